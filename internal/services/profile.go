package services

import (
	"context"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type ProfileService interface {
	// GetProfile returns nil when the user has not logged a record or set up a profile yet.
	GetProfile(ctx context.Context) (*types.UserProfile, error)
	SetupProfile(ctx context.Context, in domainagg.SetupProfileInput) (*types.UserProfile, error)
}

type profileService struct {
	log      *logger.Logger
	profiles repos.UserProfileRepo
	ledger   domainagg.ProgressLedger
	notifier Notifier
}

func NewProfileService(log *logger.Logger, profiles repos.UserProfileRepo, ledger domainagg.ProgressLedger, notifier Notifier) ProfileService {
	return &profileService{
		log:      log.With("service", "ProfileService"),
		profiles: profiles,
		ledger:   ledger,
		notifier: notifierOrNop(notifier),
	}
}

func (s *profileService) GetProfile(ctx context.Context) (*types.UserProfile, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, internalErr("profile.get", err)
	}
	return p, nil
}

func (s *profileService) SetupProfile(ctx context.Context, in domainagg.SetupProfileInput) (*types.UserProfile, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	in.UserID = userID
	p, err := s.ledger.SetupProfile(ctx, in)
	if err != nil {
		return nil, err
	}
	s.notifier.Committed(ctx, Outcome{UserID: userID, Profile: &p})
	return &p, nil
}

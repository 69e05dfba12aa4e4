package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
)

var ProgressLedgerContract = Contract{
	Name:             "Tracking.ProgressLedger",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns smoking records and the profile counters derived from them; serializes writes per user on the profile row.",
}

// ProgressLedger applies daily smoking records to a user's profile counters.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeDuplicateRecord, CodeRetryable, CodeInternal.
type ProgressLedger interface {
	Aggregate

	// ApplyRecord creates the record for a new date and adds its contribution to the profile.
	ApplyRecord(ctx context.Context, in ApplyRecordInput) (LedgerResult, error)

	// UpdateRecord edits an existing record and applies only the delta against its previous values.
	UpdateRecord(ctx context.Context, in UpdateRecordInput) (LedgerResult, error)

	// DeleteRecord removes a record and withdraws its avoided-cigarette contribution.
	DeleteRecord(ctx context.Context, in DeleteRecordInput) (LedgerResult, error)

	// SetupProfile creates or edits the descriptive profile fields and the baseline.
	SetupProfile(ctx context.Context, in SetupProfileInput) (user.UserProfile, error)
}

type ApplyRecordInput struct {
	UserID           uuid.UUID
	RecordDate       time.Time
	CigarettesSmoked int
	// BaselinePerDay overrides the profile baseline for this record when set.
	BaselinePerDay *int
	CravingsCount  int
	Mood           string
	Triggers       string
	Notes          string
}

type UpdateRecordInput struct {
	UserID           uuid.UUID
	RecordID         uuid.UUID
	CigarettesSmoked *int
	CravingsCount    *int
	Mood             *string
	Triggers         *string
	Notes            *string
}

type DeleteRecordInput struct {
	UserID   uuid.UUID
	RecordID uuid.UUID
}

type SetupProfileInput struct {
	UserID           uuid.UUID
	CigarettesPerDay *int
	SmokingStartAge  *int
	SmokingYears     *int
	QuitAttempts     *int
	MotivationLevel  *string
	QuitReason       *string
	HealthConditions *string
}

type LedgerResult struct {
	Record          tracking.SmokingRecord
	Profile         user.UserProfile
	CompletedGoals  []goals.Goal
	NewAchievements []achievements.Achievement
	Notifications   []notifications.Notification
}

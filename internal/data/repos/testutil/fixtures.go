package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:        id,
		Email:     email,
		Username:  "u_" + id.String()[:8],
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, baseline int) *types.UserProfile {
	tb.Helper()
	p := &types.UserProfile{
		ID:               uuid.New(),
		UserID:           userID,
		CigarettesPerDay: baseline,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time, smoked, baseline int) *types.SmokingRecord {
	tb.Helper()
	rec := &types.SmokingRecord{
		ID:               uuid.New(),
		UserID:           userID,
		RecordDate:       tracking.DayOf(day),
		CigarettesSmoked: smoked,
		BaselinePerDay:   baseline,
		Mood:             tracking.MoodNeutral,
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed record: %v", err)
	}
	return rec
}

func SeedGoal(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, goalType string, target int, status string) *types.Goal {
	tb.Helper()
	g := &types.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		GoalType:    goalType,
		TargetValue: target,
		StartDate:   tracking.DayOf(time.Now().UTC()),
		Status:      status,
	}
	if g.Status == "" {
		g.Status = goals.StatusActive
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed goal: %v", err)
	}
	return g
}

func SeedAchievement(tb testing.TB, ctx context.Context, tx *gorm.DB, name, criteriaType string, criteriaValue, points int) *types.Achievement {
	tb.Helper()
	a := &types.Achievement{
		ID:            uuid.New(),
		Name:          name,
		BadgeType:     "beginner",
		CriteriaType:  criteriaType,
		CriteriaValue: criteriaValue,
		Points:        points,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed achievement: %v", err)
	}
	return a
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, title, category string, published bool) *types.EducationalContent {
	tb.Helper()
	c := &types.EducationalContent{
		ID:          uuid.New(),
		Title:       title,
		Category:    category,
		Language:    "ar-dz",
		IsPublished: published,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}

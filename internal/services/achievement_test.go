package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
)

func TestComputeAchievementStatistics(t *testing.T) {
	now := time.Date(2026, time.March, 20, 12, 0, 0, 0, time.UTC)
	earned := []*types.UserAchievement{
		{EarnedAt: now.AddDate(0, 0, -1), Achievement: &types.Achievement{BadgeType: "beginner", Points: 10}},
		{EarnedAt: now.AddDate(0, 0, -30), Achievement: &types.Achievement{BadgeType: "beginner", Points: 20}},
		{EarnedAt: now.AddDate(0, 0, -2), Achievement: &types.Achievement{Points: 5}},
	}
	st := computeAchievementStatistics(8, earned, now.AddDate(0, 0, -7))
	if st.EarnedCount != 3 || st.AvailableCount != 5 || st.TotalPoints != 35 {
		t.Fatalf("counts: got %+v", st)
	}
	if st.CompletionRate != 37.5 {
		t.Fatalf("completion_rate: want=37.5 got=%v", st.CompletionRate)
	}
	if st.RecentEarned != 2 {
		t.Fatalf("recent_earned: want=2 got=%d", st.RecentEarned)
	}
	if st.EarnedByType["beginner"] != 2 || st.EarnedByType["other"] != 1 {
		t.Fatalf("earned_by_type: got %v", st.EarnedByType)
	}
}

func TestBadgeRendererProducesPNG(t *testing.T) {
	r, err := NewBadgeRenderer("")
	if err != nil {
		t.Fatalf("NewBadgeRenderer: %v", err)
	}
	a := &types.Achievement{Name: "Week Warrior", BadgeType: "intermediate", Points: 50}
	for _, earned := range []bool{true, false} {
		buf, err := r.Render(a, earned)
		if err != nil {
			t.Fatalf("Render(earned=%v): %v", earned, err)
		}
		img, err := png.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		if b := img.Bounds(); b.Dx() != badgeSize || b.Dy() != badgeSize {
			t.Fatalf("bounds: want=%dx%d got=%v", badgeSize, badgeSize, b)
		}
	}
	if _, err := r.Render(nil, true); err == nil {
		t.Fatalf("Render(nil): want error")
	}
}

func TestBadgeColorLockedIsGrey(t *testing.T) {
	c := badgeColor(achievements.BadgeAdvanced, false)
	if c.R != 0x9E || c.G != 0x9E || c.B != 0x9E {
		t.Fatalf("locked colour: got %+v", c)
	}
	c = badgeColor(achievements.BadgeAdvanced, true)
	if c.R != 0xD4 || c.G != 0xAF || c.B != 0x37 {
		t.Fatalf("advanced colour: got %+v", c)
	}
}

func TestBadgeInitials(t *testing.T) {
	cases := map[string]string{
		"First Step":          "FS",
		"one week smoke free": "OW",
		"champion":            "C",
		"   ":                 "?",
	}
	for in, want := range cases {
		if got := badgeInitials(in); got != want {
			t.Fatalf("badgeInitials(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestAchievementServiceCreateRequiresAdmin(t *testing.T) {
	db := repotest.FreshDB(t)
	log := repotest.Logger(t)
	svc := NewAchievementService(db, log, repos.NewSet(db, log), nil, nil, nil)

	in := CreateAchievementInput{Name: "Iron Lungs", CriteriaType: achievements.CriteriaDaysSmokeFree, CriteriaValue: 90, Points: 100}
	if _, err := svc.Create(authedCtx(uuid.New(), user.RoleUser), in); err != ErrForbidden {
		t.Fatalf("Create as user: want=%v got=%v", ErrForbidden, err)
	}
	admin := authedCtx(uuid.New(), user.RoleAdmin)
	a, err := svc.Create(admin, in)
	if err != nil {
		t.Fatalf("Create as admin: %v", err)
	}
	if a.ID == uuid.Nil || a.Name != "Iron Lungs" {
		t.Fatalf("created: got %+v", a)
	}
	if _, err := svc.Create(admin, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("duplicate name: want validation got=%v", err)
	}

	if _, err := svc.Badge(context.Background(), a.ID); !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("Badge without renderer: want precondition_failed got=%v", err)
	}
}

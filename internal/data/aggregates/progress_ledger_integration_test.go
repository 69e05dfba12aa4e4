package aggregates

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestProgressLedgerScenario(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-scenario@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, u.ID, 20)
	ledger := f.ledger()

	day1, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now, CigarettesSmoked: 0})
	if err != nil {
		t.Fatalf("ApplyRecord day1: %v", err)
	}
	if day1.Profile.CurrentStreakDays != 1 || day1.Profile.TotalCigarettesAvoided != 20 {
		t.Fatalf("day1 profile: %+v", day1.Profile)
	}
	if day1.Profile.TotalMoneySaved != 20*types.UnitPrice {
		t.Fatalf("day1 money: want=%v got=%v", 20*types.UnitPrice, day1.Profile.TotalMoneySaved)
	}
	if day1.Record.BaselinePerDay != 20 {
		t.Fatalf("baseline snapshot: want=20 got=%d", day1.Record.BaselinePerDay)
	}

	day2, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now.AddDate(0, 0, 1), CigarettesSmoked: 5})
	if err != nil {
		t.Fatalf("ApplyRecord day2: %v", err)
	}
	if day2.Profile.CurrentStreakDays != 0 || day2.Profile.LongestStreakDays != 1 || day2.Profile.TotalCigarettesAvoided != 35 {
		t.Fatalf("day2 profile: %+v", day2.Profile)
	}

	edited, err := ledger.UpdateRecord(f.ctx, domainagg.UpdateRecordInput{UserID: u.ID, RecordID: day1.Record.ID, CigarettesSmoked: intPtr(3)})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if edited.Profile.TotalCigarettesAvoided != 32 || edited.Profile.CurrentStreakDays != 0 || edited.Profile.LongestStreakDays != 1 {
		t.Fatalf("edited profile: %+v", edited.Profile)
	}

	stored, err := f.repos.Profiles.GetByUserID(dbctx.Context{Ctx: f.ctx}, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if stored.TotalCigarettesAvoided != 32 || stored.TotalMoneySaved != 32*types.UnitPrice {
		t.Fatalf("stored profile: avoided=%d money=%v", stored.TotalCigarettesAvoided, stored.TotalMoneySaved)
	}
}

func TestProgressLedgerDuplicateDate(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-dup@example.com")
	ledger := f.ledger()

	in := domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now, CigarettesSmoked: 2, BaselinePerDay: intPtr(10)}
	if _, err := ledger.ApplyRecord(f.ctx, in); err != nil {
		t.Fatalf("first ApplyRecord: %v", err)
	}
	_, err := ledger.ApplyRecord(f.ctx, in)
	if !domainagg.IsCode(err, domainagg.CodeDuplicateRecord) {
		t.Fatalf("second ApplyRecord: want duplicate_record got=%v", err)
	}

	count, err := f.repos.Records.CountByUser(dbctx.Context{Ctx: f.ctx}, u.ID)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if count != 1 {
		t.Fatalf("records: want=1 got=%d", count)
	}
}

// blindDayLookup hides existing records from the day pre-check so only the
// unique index can reject a second record for the same day.
type blindDayLookup struct {
	repos.SmokingRecordRepo
}

func (blindDayLookup) GetByUserAndDate(dbctx.Context, uuid.UUID, time.Time) (*types.SmokingRecord, error) {
	return nil, nil
}

func TestProgressLedgerDuplicateDateCaughtByUniqueIndex(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-dup-race@example.com")
	f.repos.Records = blindDayLookup{SmokingRecordRepo: f.repos.Records}
	ledger := f.ledger()

	in := domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now, CigarettesSmoked: 0, BaselinePerDay: intPtr(10)}
	if _, err := ledger.ApplyRecord(f.ctx, in); err != nil {
		t.Fatalf("first ApplyRecord: %v", err)
	}
	_, err := ledger.ApplyRecord(f.ctx, in)
	if !domainagg.IsCode(err, domainagg.CodeDuplicateRecord) {
		t.Fatalf("second ApplyRecord: want duplicate_record got=%v", err)
	}

	profile, err := f.repos.Profiles.GetByUserID(dbctx.Context{Ctx: f.ctx}, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if profile.TotalCigarettesAvoided != 10 || profile.CurrentStreakDays != 1 {
		t.Fatalf("profile after rejected duplicate: %+v", profile)
	}
}

func TestProgressLedgerLazyProfileAndValidation(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-lazy@example.com")
	ledger := f.ledger()

	res, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{
		UserID: u.ID, RecordDate: f.now, CigarettesSmoked: 0, BaselinePerDay: intPtr(12), Mood: "happy",
	})
	if err != nil {
		t.Fatalf("ApplyRecord: %v", err)
	}
	if res.Profile.CigarettesPerDay != 12 || res.Profile.TotalCigarettesAvoided != 12 {
		t.Fatalf("lazy profile: %+v", res.Profile)
	}

	cases := []domainagg.ApplyRecordInput{
		{UserID: u.ID, RecordDate: f.now, CigarettesSmoked: -1},
		{UserID: u.ID, RecordDate: f.now, CravingsCount: -2},
		{UserID: u.ID, RecordDate: f.now, Mood: "ecstatic"},
		{UserID: u.ID},
	}
	for i, in := range cases {
		if _, err := ledger.ApplyRecord(f.ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("case %d: want validation got=%v", i, err)
		}
	}

	_, err = ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: uuid.New(), RecordDate: f.now})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing user: want not_found got=%v", err)
	}
}

func TestProgressLedgerUpdateForeignRecordIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner := repotest.SeedUser(t, f.ctx, f.tx, "ledger-owner@example.com")
	other := repotest.SeedUser(t, f.ctx, f.tx, "ledger-other@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, other.ID, 10)
	ledger := f.ledger()

	res, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: owner.ID, RecordDate: f.now, BaselinePerDay: intPtr(10)})
	if err != nil {
		t.Fatalf("ApplyRecord: %v", err)
	}
	_, err = ledger.UpdateRecord(f.ctx, domainagg.UpdateRecordInput{UserID: other.ID, RecordID: res.Record.ID, CigarettesSmoked: intPtr(4)})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign update: want not_found got=%v", err)
	}
}

func TestProgressLedgerDeleteWithdrawsContribution(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-delete@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, u.ID, 20)
	ledger := f.ledger()

	first, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now, CigarettesSmoked: 0})
	if err != nil {
		t.Fatalf("ApplyRecord: %v", err)
	}
	if _, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now.AddDate(0, 0, 1), CigarettesSmoked: 8}); err != nil {
		t.Fatalf("ApplyRecord day2: %v", err)
	}
	res, err := ledger.DeleteRecord(f.ctx, domainagg.DeleteRecordInput{UserID: u.ID, RecordID: first.Record.ID})
	if err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if res.Profile.TotalCigarettesAvoided != 12 || res.Profile.LongestStreakDays != 1 {
		t.Fatalf("after delete: %+v", res.Profile)
	}
}

func TestProgressLedgerBaselineSnapshotSurvivesProfileEdit(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-baseline@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, u.ID, 20)
	ledger := f.ledger()

	res, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now, CigarettesSmoked: 5})
	if err != nil {
		t.Fatalf("ApplyRecord: %v", err)
	}
	if _, err := ledger.SetupProfile(f.ctx, domainagg.SetupProfileInput{UserID: u.ID, CigarettesPerDay: intPtr(40)}); err != nil {
		t.Fatalf("SetupProfile: %v", err)
	}
	edited, err := ledger.UpdateRecord(f.ctx, domainagg.UpdateRecordInput{UserID: u.ID, RecordID: res.Record.ID, CigarettesSmoked: intPtr(10)})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	// 15 avoided at creation, 10 after the edit against the snapshotted baseline of 20.
	if edited.Profile.TotalCigarettesAvoided != 10 {
		t.Fatalf("avoided: want=10 got=%d", edited.Profile.TotalCigarettesAvoided)
	}
	if edited.Profile.CigarettesPerDay != 40 {
		t.Fatalf("baseline: want=40 got=%d", edited.Profile.CigarettesPerDay)
	}
}

func TestProgressLedgerSevenDayAchievementUnlocksOnce(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-seven@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, u.ID, 10)
	week := repotest.SeedAchievement(t, f.ctx, f.tx, "ledger-test week", achievements.CriteriaDaysSmokeFree, 7, 50)
	ledger := f.ledger()

	var unlocked int
	for i := 0; i < 9; i++ {
		res, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now.AddDate(0, 0, i)})
		if err != nil {
			t.Fatalf("ApplyRecord %d: %v", i, err)
		}
		for _, a := range res.NewAchievements {
			if a.ID == week.ID {
				unlocked++
				if i != 6 {
					t.Fatalf("unlocked on day %d, want day 7", i+1)
				}
			}
		}
	}
	if unlocked != 1 {
		t.Fatalf("unlock count: want=1 got=%d", unlocked)
	}
	if n := f.countNotifications(t, u.ID, notifications.TypeAchievementEarned); n != 1 {
		t.Fatalf("achievement notifications: want=1 got=%d", n)
	}
	available, err := f.repos.Achievements.ListUnearnedByUser(dbctx.Context{Ctx: f.ctx}, u.ID)
	if err != nil {
		t.Fatalf("ListUnearnedByUser: %v", err)
	}
	for _, a := range available {
		if a.ID == week.ID {
			t.Fatalf("earned achievement still listed as available")
		}
	}
}

func TestProgressLedgerSyncsSmokeFreeGoal(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-goal@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, u.ID, 10)
	g := repotest.SeedGoal(t, f.ctx, f.tx, u.ID, goals.TypeSmokeFreeDays, 2, goals.StatusActive)
	ledger := f.ledger()

	res, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now})
	if err != nil {
		t.Fatalf("ApplyRecord day1: %v", err)
	}
	if len(res.CompletedGoals) != 0 {
		t.Fatalf("goal completed too early")
	}
	res, err = ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("ApplyRecord day2: %v", err)
	}
	if len(res.CompletedGoals) != 1 || res.CompletedGoals[0].ID != g.ID {
		t.Fatalf("completed goals: %+v", res.CompletedGoals)
	}
	stored, err := f.repos.Goals.GetByID(dbctx.Context{Ctx: f.ctx}, u.ID, g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != goals.StatusCompleted || stored.CompletedAt == nil || stored.CurrentValue != 2 {
		t.Fatalf("stored goal: %+v", stored)
	}
	if n := f.countNotifications(t, u.ID, notifications.TypeGoalCompleted); n != 1 {
		t.Fatalf("goal notifications: want=1 got=%d", n)
	}
}

func TestProgressLedgerRollbackLeavesNothing(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "ledger-rollback@example.com")
	repotest.SeedProfile(t, f.ctx, f.tx, u.ID, 10)
	repotest.SeedAchievement(t, f.ctx, f.tx, "ledger-test first day", achievements.CriteriaDaysSmokeFree, 1, 10)

	base := f.base
	base.Runner = rollbackAfterBodyRunner{db: f.tx}
	ledger := NewProgressLedger(ProgressLedgerDeps{Base: base, Repos: f.repos, Now: f.clock()})

	_, err := ledger.ApplyRecord(f.ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: f.now})
	if err == nil || !errors.Is(err, errForcedRollback) {
		t.Fatalf("expected forced rollback, got=%v", err)
	}

	dbc := dbctx.Context{Ctx: f.ctx}
	count, err := f.repos.Records.CountByUser(dbc, u.ID)
	if err != nil || count != 0 {
		t.Fatalf("records after rollback: count=%d err=%v", count, err)
	}
	p, err := f.repos.Profiles.GetByUserID(dbc, u.ID)
	if err != nil || p.TotalCigarettesAvoided != 0 || p.CurrentStreakDays != 0 {
		t.Fatalf("profile after rollback: %+v err=%v", p, err)
	}
	earned, err := f.repos.UserAchievements.CountByUser(dbc, u.ID)
	if err != nil || earned != 0 {
		t.Fatalf("achievements after rollback: %d err=%v", earned, err)
	}
	if n := f.countNotifications(t, u.ID, ""); n != 0 {
		t.Fatalf("notifications after rollback: want=0 got=%d", n)
	}
}

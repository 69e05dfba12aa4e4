package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

type ProgressLedgerDeps struct {
	Base  BaseDeps
	Repos repos.Set
	// Now is overridable in tests.
	Now func() time.Time
}

type progressLedger struct {
	deps      ProgressLedgerDeps
	unlocker  achievementUnlocker
	completer goalCompleter
}

func NewProgressLedger(deps ProgressLedgerDeps) domainagg.ProgressLedger {
	deps.Base = deps.Base.withDefaults()
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &progressLedger{
		deps:      deps,
		unlocker:  newAchievementUnlocker(deps.Repos),
		completer: newGoalCompleter(deps.Repos, deps.Base.CASGuard),
	}
}

func (l *progressLedger) Contract() domainagg.Contract {
	return domainagg.ProgressLedgerContract
}

// lockUser takes the per-user write lock: the user row first, then the
// profile row. The profile is nil until the first record or setup.
func (l *progressLedger) lockUser(dbc dbctx.Context, userID uuid.UUID) (*types.UserProfile, error) {
	u, err := l.deps.Repos.Users.LockByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NotFoundError("user not found")
	}
	return l.deps.Repos.Profiles.LockByUserID(dbc, userID)
}

func (l *progressLedger) ensureProfile(dbc dbctx.Context, userID uuid.UUID, baseline int) (*types.UserProfile, error) {
	p, err := l.lockUser(dbc, userID)
	if err != nil || p != nil {
		return p, err
	}
	return l.deps.Repos.Profiles.Create(dbc, &types.UserProfile{UserID: userID, CigarettesPerDay: baseline})
}

func validateMood(mood string) error {
	if mood != "" && !tracking.IsMood(mood) {
		return ValidationError("mood must be one of " + strings.Join(tracking.Moods, ", "))
	}
	return nil
}

func (l *progressLedger) ApplyRecord(ctx context.Context, in domainagg.ApplyRecordInput) (domainagg.LedgerResult, error) {
	const op = "aggregate.progress_ledger.apply_record"
	var out domainagg.LedgerResult
	in.Mood = strings.TrimSpace(in.Mood)
	switch {
	case in.UserID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	case in.RecordDate.IsZero():
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing record_date", nil)
	case in.CigarettesSmoked < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "cigarettes_smoked must be >= 0", nil)
	case in.CravingsCount < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "cravings_count must be >= 0", nil)
	case in.BaselinePerDay != nil && *in.BaselinePerDay < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "baseline_per_day must be >= 0", nil)
	}
	if err := validateMood(in.Mood); err != nil {
		return out, MapError(op, err)
	}
	day := tracking.DayOf(in.RecordDate)

	err := executeWrite(ctx, l.deps.Base, op, func(dbc dbctx.Context) error {
		initialBaseline := 0
		if in.BaselinePerDay != nil {
			initialBaseline = *in.BaselinePerDay
		}
		profile, err := l.ensureProfile(dbc, in.UserID, initialBaseline)
		if err != nil {
			return err
		}
		existing, err := l.deps.Repos.Records.GetByUserAndDate(dbc, in.UserID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			return DuplicateRecordError("a record already exists for " + day.Format(time.DateOnly))
		}

		baseline := profile.CigarettesPerDay
		if in.BaselinePerDay != nil {
			baseline = *in.BaselinePerDay
		}
		rec, err := l.deps.Repos.Records.Create(dbc, &types.SmokingRecord{
			UserID:           in.UserID,
			RecordDate:       day,
			CigarettesSmoked: in.CigarettesSmoked,
			CravingsCount:    in.CravingsCount,
			Mood:             in.Mood,
			Triggers:         strings.TrimSpace(in.Triggers),
			Notes:            strings.TrimSpace(in.Notes),
			BaselinePerDay:   baseline,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return DuplicateRecordError("a record already exists for " + day.Format(time.DateOnly))
			}
			return err
		}

		counters := countersOf(profile).OnCreate(rec.CigarettesSmoked, baseline)
		res, err := l.commitCounters(dbc, profile, counters, true)
		if err != nil {
			return err
		}
		res.Record = *rec
		out = res
		return nil
	})
	if err != nil {
		return domainagg.LedgerResult{}, err
	}
	return out, nil
}

func (l *progressLedger) UpdateRecord(ctx context.Context, in domainagg.UpdateRecordInput) (domainagg.LedgerResult, error) {
	const op = "aggregate.progress_ledger.update_record"
	var out domainagg.LedgerResult
	switch {
	case in.UserID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	case in.RecordID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing record_id", nil)
	case in.CigarettesSmoked != nil && *in.CigarettesSmoked < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "cigarettes_smoked must be >= 0", nil)
	case in.CravingsCount != nil && *in.CravingsCount < 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "cravings_count must be >= 0", nil)
	}
	if in.Mood != nil {
		mood := strings.TrimSpace(*in.Mood)
		in.Mood = &mood
		if err := validateMood(mood); err != nil {
			return out, MapError(op, err)
		}
	}

	err := executeWrite(ctx, l.deps.Base, op, func(dbc dbctx.Context) error {
		profile, err := l.lockUser(dbc, in.UserID)
		if err != nil {
			return err
		}
		rec, err := l.deps.Repos.Records.LockByID(dbc, in.UserID, in.RecordID)
		if err != nil {
			return err
		}
		if rec == nil || profile == nil {
			return NotFoundError("record not found")
		}

		updates := map[string]interface{}{}
		oldSmoked := rec.CigarettesSmoked
		if in.CigarettesSmoked != nil {
			updates["cigarettes_smoked"] = *in.CigarettesSmoked
			rec.CigarettesSmoked = *in.CigarettesSmoked
		}
		if in.CravingsCount != nil {
			updates["cravings_count"] = *in.CravingsCount
			rec.CravingsCount = *in.CravingsCount
		}
		if in.Mood != nil {
			updates["mood"] = *in.Mood
			rec.Mood = *in.Mood
		}
		if in.Triggers != nil {
			updates["triggers"] = strings.TrimSpace(*in.Triggers)
			rec.Triggers = strings.TrimSpace(*in.Triggers)
		}
		if in.Notes != nil {
			updates["notes"] = strings.TrimSpace(*in.Notes)
			rec.Notes = strings.TrimSpace(*in.Notes)
		}
		if err := l.deps.Repos.Records.UpdateFields(dbc, rec.ID, updates); err != nil {
			return err
		}
		rec.UpdatedAt = l.deps.Now()

		counters := countersOf(profile).OnUpdate(oldSmoked, rec.CigarettesSmoked, rec.BaselinePerDay)
		res, err := l.commitCounters(dbc, profile, counters, true)
		if err != nil {
			return err
		}
		res.Record = *rec
		out = res
		return nil
	})
	if err != nil {
		return domainagg.LedgerResult{}, err
	}
	return out, nil
}

func (l *progressLedger) DeleteRecord(ctx context.Context, in domainagg.DeleteRecordInput) (domainagg.LedgerResult, error) {
	const op = "aggregate.progress_ledger.delete_record"
	var out domainagg.LedgerResult
	if in.UserID == uuid.Nil || in.RecordID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or record_id", nil)
	}
	err := executeWrite(ctx, l.deps.Base, op, func(dbc dbctx.Context) error {
		profile, err := l.lockUser(dbc, in.UserID)
		if err != nil {
			return err
		}
		rec, err := l.deps.Repos.Records.LockByID(dbc, in.UserID, in.RecordID)
		if err != nil {
			return err
		}
		if rec == nil || profile == nil {
			return NotFoundError("record not found")
		}
		if err := l.deps.Repos.Records.Delete(dbc, rec.ID); err != nil {
			return err
		}
		counters := countersOf(profile).OnDelete(rec.CigarettesSmoked, rec.BaselinePerDay)
		res, err := l.commitCounters(dbc, profile, counters, false)
		if err != nil {
			return err
		}
		res.Record = *rec
		out = res
		return nil
	})
	if err != nil {
		return domainagg.LedgerResult{}, err
	}
	return out, nil
}

// commitCounters persists the new counters, syncs ledger-driven goals and,
// when evaluate is set, runs the achievement pass on the updated state.
func (l *progressLedger) commitCounters(dbc dbctx.Context, profile *types.UserProfile, counters LedgerCounters, evaluate bool) (domainagg.LedgerResult, error) {
	var res domainagg.LedgerResult
	if counters.LongestStreak < counters.CurrentStreak || counters.CurrentStreak < 0 || counters.Avoided < 0 {
		return res, InvariantError("ledger counters out of range")
	}
	if err := l.deps.Repos.Profiles.UpdateFields(dbc, profile.ID, counters.profileUpdates()); err != nil {
		return res, err
	}
	counters.applyTo(profile)
	profile.UpdatedAt = l.deps.Now()
	res.Profile = *profile

	completed, notes, err := l.completer.syncGoals(dbc, profile.UserID, profile, l.deps.Now())
	if err != nil {
		return res, err
	}
	res.CompletedGoals = completed
	res.Notifications = append(res.Notifications, notes...)

	if !evaluate {
		return res, nil
	}
	eval, err := l.unlocker.evaluate(dbc, profile.UserID)
	if err != nil {
		return res, err
	}
	res.NewAchievements = eval.Unlocked
	res.Notifications = append(res.Notifications, eval.Notifications...)
	return res, nil
}

func (l *progressLedger) SetupProfile(ctx context.Context, in domainagg.SetupProfileInput) (types.UserProfile, error) {
	const op = "aggregate.progress_ledger.setup_profile"
	var out types.UserProfile
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	for name, v := range map[string]*int{
		"cigarettes_per_day": in.CigarettesPerDay,
		"smoking_start_age":  in.SmokingStartAge,
		"smoking_years":      in.SmokingYears,
		"quit_attempts":      in.QuitAttempts,
	} {
		if v != nil && *v < 0 {
			return out, domainagg.NewError(domainagg.CodeValidation, op, name+" must be >= 0", nil)
		}
	}

	err := executeWrite(ctx, l.deps.Base, op, func(dbc dbctx.Context) error {
		profile, err := l.ensureProfile(dbc, in.UserID, 0)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.CigarettesPerDay != nil {
			updates["cigarettes_per_day"] = *in.CigarettesPerDay
			profile.CigarettesPerDay = *in.CigarettesPerDay
		}
		if in.SmokingStartAge != nil {
			updates["smoking_start_age"] = *in.SmokingStartAge
			profile.SmokingStartAge = in.SmokingStartAge
		}
		if in.SmokingYears != nil {
			updates["smoking_years"] = *in.SmokingYears
			profile.SmokingYears = in.SmokingYears
		}
		if in.QuitAttempts != nil {
			updates["quit_attempts"] = *in.QuitAttempts
			profile.QuitAttempts = *in.QuitAttempts
		}
		if in.MotivationLevel != nil {
			updates["motivation_level"] = strings.TrimSpace(*in.MotivationLevel)
			profile.MotivationLevel = strings.TrimSpace(*in.MotivationLevel)
		}
		if in.QuitReason != nil {
			updates["quit_reason"] = strings.TrimSpace(*in.QuitReason)
			profile.QuitReason = strings.TrimSpace(*in.QuitReason)
		}
		if in.HealthConditions != nil {
			updates["health_conditions"] = strings.TrimSpace(*in.HealthConditions)
			profile.HealthConditions = strings.TrimSpace(*in.HealthConditions)
		}
		if err := l.deps.Repos.Profiles.UpdateFields(dbc, profile.ID, updates); err != nil {
			return err
		}
		out = *profile
		return nil
	})
	if err != nil {
		return types.UserProfile{}, err
	}
	return out, nil
}

package aggregates

import (
	"math"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
)

// LedgerCounters are the profile values the ledger derives from records.
type LedgerCounters struct {
	CurrentStreak int
	LongestStreak int
	Avoided       int
}

func countersOf(p *types.UserProfile) LedgerCounters {
	if p == nil {
		return LedgerCounters{}
	}
	return LedgerCounters{
		CurrentStreak: p.CurrentStreakDays,
		LongestStreak: p.LongestStreakDays,
		Avoided:       p.TotalCigarettesAvoided,
	}
}

// AvoidedForDay is max(baseline - smoked, 0).
func AvoidedForDay(baseline, smoked int) int {
	if d := baseline - smoked; d > 0 {
		return d
	}
	return 0
}

// MoneySaved converts avoided cigarettes into currency, rounded to cents.
func MoneySaved(avoided int) float64 {
	return math.Round(float64(avoided)*types.UnitPrice*100) / 100
}

func (c LedgerCounters) MoneySaved() float64 { return MoneySaved(c.Avoided) }

// OnCreate applies a newly created record.
func (c LedgerCounters) OnCreate(smoked, baseline int) LedgerCounters {
	if smoked == 0 {
		c = c.extendStreak()
	} else {
		c.CurrentStreak = 0
	}
	return c.addAvoided(AvoidedForDay(baseline, smoked))
}

// OnUpdate applies an edit of an existing record. Only a transition into or
// out of zero cigarettes moves the streak.
func (c LedgerCounters) OnUpdate(oldSmoked, newSmoked, baseline int) LedgerCounters {
	switch {
	case oldSmoked > 0 && newSmoked == 0:
		c = c.extendStreak()
	case oldSmoked == 0 && newSmoked > 0:
		c.CurrentStreak = 0
	}
	return c.addAvoided(AvoidedForDay(baseline, newSmoked) - AvoidedForDay(baseline, oldSmoked))
}

// OnDelete withdraws a removed record's contribution. Streaks are untouched.
func (c LedgerCounters) OnDelete(smoked, baseline int) LedgerCounters {
	return c.addAvoided(-AvoidedForDay(baseline, smoked))
}

func (c LedgerCounters) extendStreak() LedgerCounters {
	c.CurrentStreak++
	if c.CurrentStreak > c.LongestStreak {
		c.LongestStreak = c.CurrentStreak
	}
	return c
}

func (c LedgerCounters) addAvoided(delta int) LedgerCounters {
	c.Avoided += delta
	if c.Avoided < 0 {
		c.Avoided = 0
	}
	return c
}

func (c LedgerCounters) profileUpdates() map[string]interface{} {
	return map[string]interface{}{
		"current_streak_days":      c.CurrentStreak,
		"longest_streak_days":      c.LongestStreak,
		"total_cigarettes_avoided": c.Avoided,
		"total_money_saved":        c.MoneySaved(),
	}
}

func (c LedgerCounters) applyTo(p *types.UserProfile) {
	p.CurrentStreakDays = c.CurrentStreak
	p.LongestStreakDays = c.LongestStreak
	p.TotalCigarettesAvoided = c.Avoided
	p.TotalMoneySaved = c.MoneySaved()
}

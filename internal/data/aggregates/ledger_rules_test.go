package aggregates

import "testing"

func TestAvoidedForDay(t *testing.T) {
	cases := []struct{ baseline, smoked, want int }{
		{20, 0, 20},
		{20, 5, 15},
		{20, 25, 0},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := AvoidedForDay(c.baseline, c.smoked); got != c.want {
			t.Fatalf("AvoidedForDay(%d,%d): want=%d got=%d", c.baseline, c.smoked, c.want, got)
		}
	}
}

func TestLedgerCounters_Scenario(t *testing.T) {
	var c LedgerCounters
	c = c.OnCreate(0, 20)
	if c.CurrentStreak != 1 || c.LongestStreak != 1 || c.Avoided != 20 {
		t.Fatalf("day1: %+v", c)
	}
	if c.MoneySaved() != 500 {
		t.Fatalf("day1 money: want=500 got=%v", c.MoneySaved())
	}
	c = c.OnCreate(5, 20)
	if c.CurrentStreak != 0 || c.LongestStreak != 1 || c.Avoided != 35 {
		t.Fatalf("day2: %+v", c)
	}
	c = c.OnUpdate(0, 3, 20)
	if c.CurrentStreak != 0 || c.LongestStreak != 1 || c.Avoided != 32 {
		t.Fatalf("edit day1: %+v", c)
	}
	if c.MoneySaved() != 800 {
		t.Fatalf("edit money: want=800 got=%v", c.MoneySaved())
	}
}

func TestLedgerCounters_UpdateTransitions(t *testing.T) {
	base := LedgerCounters{CurrentStreak: 2, LongestStreak: 4, Avoided: 10}

	up := base.OnUpdate(3, 0, 10)
	if up.CurrentStreak != 3 || up.LongestStreak != 4 || up.Avoided != 13 {
		t.Fatalf(">0 -> 0: %+v", up)
	}
	same := base.OnUpdate(0, 0, 10)
	if same.CurrentStreak != 2 || same.Avoided != 10 {
		t.Fatalf("0 -> 0: %+v", same)
	}
	nonzero := base.OnUpdate(2, 6, 10)
	if nonzero.CurrentStreak != 2 || nonzero.Avoided != 6 {
		t.Fatalf(">0 -> >0: %+v", nonzero)
	}
	grow := LedgerCounters{CurrentStreak: 4, LongestStreak: 4}.OnUpdate(1, 0, 0)
	if grow.LongestStreak != 5 {
		t.Fatalf("longest should follow current: %+v", grow)
	}
}

func TestLedgerCounters_ClampAndDelete(t *testing.T) {
	c := LedgerCounters{CurrentStreak: 3, LongestStreak: 3, Avoided: 5}
	del := c.OnDelete(0, 20)
	if del.Avoided != 0 || del.CurrentStreak != 3 {
		t.Fatalf("delete clamps and keeps streak: %+v", del)
	}
	if del.MoneySaved() != 0 {
		t.Fatalf("money after clamp: %v", del.MoneySaved())
	}
}

func TestLedgerCounters_LongestNeverDecreases(t *testing.T) {
	c := LedgerCounters{}
	seq := []int{0, 0, 0, 4, 0, 2, 0, 0, 0, 0}
	longest := 0
	for _, smoked := range seq {
		c = c.OnCreate(smoked, 10)
		if c.LongestStreak < longest {
			t.Fatalf("longest decreased: %+v", c)
		}
		if c.LongestStreak < c.CurrentStreak {
			t.Fatalf("longest below current: %+v", c)
		}
		longest = c.LongestStreak
	}
	if longest != 4 {
		t.Fatalf("longest: want=4 got=%d", longest)
	}
}

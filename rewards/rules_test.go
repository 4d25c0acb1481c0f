package rewards

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dealspot/dealspot/models"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestEligibilityFirstAction(t *testing.T) {
	r := DefaultRules()
	ok, next := r.NextEligible(nil, t0)
	if !ok {
		t.Fatal("first action should be eligible")
	}
	if !next.Equal(t0) {
		t.Fatalf("next eligible should be now, got %v", next)
	}
}

func TestEligibilityWindow(t *testing.T) {
	r := DefaultRules()
	cases := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"just after", time.Minute, false},
		{"one minute short", 24*time.Hour - time.Minute, false},
		{"exactly 24h", 24 * time.Hour, true},
		{"after 24h", 30 * time.Hour, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			last := t0
			now := t0.Add(tc.elapsed)
			ok, next := r.NextEligible(&last, now)
			if ok != tc.want {
				t.Fatalf("elapsed %v: eligible = %v, want %v", tc.elapsed, ok, tc.want)
			}
			if !ok && !next.Equal(t0.Add(24*time.Hour)) {
				t.Fatalf("next eligible should be last+24h, got %v", next)
			}
		})
	}
}

func TestStreakContinuation(t *testing.T) {
	r := DefaultRules()
	last := t0

	// within 48h continues
	if got := r.NextStreak(&last, 3, t0.Add(30*time.Hour)); got != 4 {
		t.Fatalf("streak after 30h gap = %d, want 4", got)
	}
	// 48h or more resets
	if got := r.NextStreak(&last, 3, t0.Add(50*time.Hour)); got != 1 {
		t.Fatalf("streak after 50h gap = %d, want 1", got)
	}
	if got := r.NextStreak(&last, 3, t0.Add(48*time.Hour)); got != 1 {
		t.Fatalf("streak after exactly 48h gap = %d, want 1", got)
	}
	// no prior check-in starts at 1
	if got := r.NextStreak(nil, 9, t0); got != 1 {
		t.Fatalf("streak with no prior check-in = %d, want 1", got)
	}
}

func TestStreakDayCycles(t *testing.T) {
	for streak, want := range map[int]int{1: 1, 6: 6, 7: 7, 8: 1, 14: 7, 15: 1, 21: 7} {
		if got := StreakDay(streak); got != want {
			t.Fatalf("StreakDay(%d) = %d, want %d", streak, got, want)
		}
	}
}

func TestCheckInRewardSchedule(t *testing.T) {
	r := DefaultRules()
	for day := 1; day <= 7; day++ {
		points, action := r.CheckInReward(day)
		if day == 7 {
			if points != 10 || action != models.ActionStreakComplete {
				t.Fatalf("day 7 reward = %d/%s, want 10/%s", points, action, models.ActionStreakComplete)
			}
		} else {
			if points != 5 || action != models.ActionDailyCheckIn {
				t.Fatalf("day %d reward = %d/%s, want 5/%s", day, points, action, models.ActionDailyCheckIn)
			}
		}
	}
}

func TestSpinRewardRange(t *testing.T) {
	r := DefaultRules()
	rng := rand.New(rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 10000; i++ {
		got := r.SpinReward(rng.Intn)
		if got < 1 || got > 5 {
			t.Fatalf("spin reward %d outside [1,5]", got)
		}
		seen[got] = true
	}
	for v := 1; v <= 5; v++ {
		if !seen[v] {
			t.Fatalf("spin value %d never occurred in 10000 draws", v)
		}
	}
}

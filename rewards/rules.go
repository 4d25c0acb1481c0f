package rewards

import (
	"time"

	"github.com/dealspot/dealspot/models"
)

// Rules holds the tunable constants of the rewards engine. The zero value is
// not usable; construct with DefaultRules and override from configuration.
type Rules struct {
	// Cooldown is the eligibility window for check-ins and spins.
	Cooldown time.Duration
	// StreakBreak is the gap after which a streak resets instead of continuing.
	StreakBreak time.Duration
	// BasePoints is awarded for streak days 1-6, BonusPoints for day 7.
	BasePoints  int
	BonusPoints int
	// SpinMin and SpinMax bound the spin reward, both inclusive.
	SpinMin int
	SpinMax int
}

// DefaultRules returns the production constants: 24h cooldown, 48h streak
// break, 5/10 check-in points, spin rewards in [1,5].
func DefaultRules() Rules {
	return Rules{
		Cooldown:    24 * time.Hour,
		StreakBreak: 48 * time.Hour,
		BasePoints:  5,
		BonusPoints: 10,
		SpinMin:     1,
		SpinMax:     5,
	}
}

// NextEligible reports whether an action whose previous occurrence was at
// last may run at now, and the earliest time it may run. A nil last means
// the action never ran and is eligible immediately.
func (r Rules) NextEligible(last *time.Time, now time.Time) (bool, time.Time) {
	if last == nil {
		return true, now
	}
	if now.Sub(*last) >= r.Cooldown {
		return true, now
	}
	return false, last.Add(r.Cooldown)
}

// NextStreak computes the streak length a check-in at now would produce.
// The streak continues only when the previous check-in is recent enough;
// anything else starts over at 1.
func (r Rules) NextStreak(last *time.Time, current int, now time.Time) int {
	if last == nil || now.Sub(*last) >= r.StreakBreak {
		return 1
	}
	return current + 1
}

// StreakDay maps a streak length onto the repeating 1..7 reward cycle.
func StreakDay(streak int) int {
	day := streak % 7
	if day == 0 {
		day = 7
	}
	return day
}

// CheckInReward returns the points and ledger action for the given streak day.
func (r Rules) CheckInReward(streakDay int) (int, string) {
	if streakDay == 7 {
		return r.BonusPoints, models.ActionStreakComplete
	}
	return r.BasePoints, models.ActionDailyCheckIn
}

// SpinReward maps a non-negative random value onto the inclusive spin range.
func (r Rules) SpinReward(intn func(n int) int) int {
	return r.SpinMin + intn(r.SpinMax-r.SpinMin+1)
}

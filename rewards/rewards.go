// Package rewards implements the gamification core of the marketplace: the
// append-only points ledger, the daily check-in streak engine, the
// spin-the-wheel bonus, and the withdrawal request workflow.
//
// Two Engine implementations exist: the gorm-backed one in the services
// package (production) and MemoryEngine in this package. Both share the pure
// rules in rules.go and serialize per-user mutations so that at most one
// check-in or spin succeeds per eligibility window.
package rewards

import (
	"context"
	"time"

	"github.com/dealspot/dealspot/models"
)

// CheckInResult is the outcome of a check-in attempt. An ineligible attempt
// is a normal result with Success false, not an error.
type CheckInResult struct {
	Success     bool      `json:"success"`
	Points      int       `json:"points"`
	Streak      int       `json:"streak"`
	StreakDay   int       `json:"streak_day"`
	NextCheckIn time.Time `json:"next_check_in"`
	Message     string    `json:"message"`
}

// StreakInfo is the read-only view of a user's check-in state.
type StreakInfo struct {
	CurrentStreak int        `json:"current_streak"`
	LastCheckIn   *time.Time `json:"last_check_in"`
	CanCheckIn    bool       `json:"can_check_in"`
	NextCheckIn   time.Time  `json:"next_check_in"`
}

// SpinResult is the outcome of a spin attempt.
type SpinResult struct {
	Success  bool      `json:"success"`
	Points   int       `json:"points"`
	NextSpin time.Time `json:"next_spin"`
	Message  string    `json:"message"`
}

// SpinStatus is the read-only view of a user's spin eligibility.
type SpinStatus struct {
	CanSpin  bool       `json:"can_spin"`
	LastSpin *time.Time `json:"last_spin"`
	NextSpin time.Time  `json:"next_spin"`
}

// Engine is the rewards core consumed by the HTTP layer. All mutating
// operations are atomic: the ledger entry and the cached balance commit
// together or not at all.
type Engine interface {
	CheckIn(ctx context.Context, userID uint) (CheckInResult, error)
	StreakInfo(ctx context.Context, userID uint) (StreakInfo, error)
	Spin(ctx context.Context, userID uint) (SpinResult, error)
	SpinStatus(ctx context.Context, userID uint) (SpinStatus, error)
	Balance(ctx context.Context, userID uint) (int, error)
	History(ctx context.Context, userID uint, page, pageSize int) ([]models.PointsLog, int64, error)
	RequestWithdrawal(ctx context.Context, userID uint, amount int, method string) (*models.WithdrawalRequest, error)
	ResolveWithdrawal(ctx context.Context, requestID uint, status models.WithdrawalStatus, notes string) (*models.WithdrawalRequest, error)
}

package models

import "time"

// Ledger action tags. Every points mutation carries exactly one of these.
const (
	ActionDailyCheckIn       = "daily_check_in"
	ActionStreakComplete     = "streak_complete"
	ActionSpinWheel          = "spin_wheel"
	ActionWithdrawalRequest  = "withdrawal_request"
	ActionWithdrawalRejected = "withdrawal_rejected"
)

// PointsLog is one immutable entry in a user's points ledger. Positive points
// credit the balance, negative points debit it. Rows are append-only; no code
// path updates or deletes them.
type PointsLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Points      int       `gorm:"not null" json:"points"`
	Action      string    `gorm:"size:32;not null;index" json:"action"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

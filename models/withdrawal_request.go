package models

import "time"

// WithdrawalStatus is the state of a withdrawal request. Pending is the only
// initial state; approved and rejected are terminal.
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalStatusApproved || s == WithdrawalStatusRejected
}

// WithdrawalRequest records a user's request to cash out points. The amount
// is debited from the ledger at request time and refunded once if the request
// is rejected.
type WithdrawalRequest struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Reference   string           `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID      uint             `gorm:"index;not null" json:"user_id"`
	Amount      int              `gorm:"not null" json:"amount"`
	Method      string           `gorm:"size:64;not null" json:"method"`
	Status      WithdrawalStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	RequestedAt time.Time        `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time       `json:"processed_at"`
	Notes       string           `gorm:"size:255" json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	User        User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a marketplace member. Passwords are stored as bcrypt hashes only.
// Points is a denormalized cache of the user's points log sum; it is written
// exclusively by ledger operations, never directly.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"size:64;not null" json:"username"`
	Email         string         `gorm:"size:255" json:"email"`
	PasswordHash  string         `gorm:"size:255" json:"-"`
	RegisterIP    string         `gorm:"size:45" json:"register_ip"`
	AvatarURL     string         `gorm:"size:512" json:"avatar_url"`
	Signature     string         `gorm:"size:255" json:"signature"`
	Points        int            `gorm:"default:0" json:"points"`
	CurrentStreak int            `gorm:"default:0" json:"current_streak"`
	LastCheckIn   *time.Time     `json:"last_check_in"`
	LastSpin      *time.Time     `json:"last_spin"`
	IsBanned      bool           `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	PointsLogs    []PointsLog    `json:"-"`
	CheckIns      []CheckIn      `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

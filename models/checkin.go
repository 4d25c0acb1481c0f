package models

import "time"

// CheckIn stores one successful daily check-in. StreakDay cycles 1..7 and
// PointsEarned is the day-7 bonus or the base reward accordingly.
type CheckIn struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	CheckedInAt  time.Time `gorm:"index;not null" json:"checked_in_at"`
	StreakDay    int       `gorm:"not null" json:"streak_day"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

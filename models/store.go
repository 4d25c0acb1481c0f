package models

import "time"

// Store is a merchant whose coupons are listed in the catalog.
type Store struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null;index" json:"name"`
	Slug        string    `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	LogoURL     string    `gorm:"size:512" json:"logo_url"`
	Website     string    `gorm:"size:512" json:"website"`
	Description string    `gorm:"type:text" json:"description"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Coupons     []Coupon  `json:"-"`
}

package models

import "time"

// Category groups coupons for browsing, e.g. "Electronics" or "Fashion".
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Slug      string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Icon      string    `gorm:"size:64" json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Coupons   []Coupon  `json:"-"`
}

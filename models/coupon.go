package models

import "time"

// CouponType describes what kind of discount a coupon carries.
type CouponType string

const (
	CouponTypePercent  CouponType = "percent"
	CouponTypeFixed    CouponType = "fixed"
	CouponTypeFreeShip CouponType = "freeship"
)

// Coupon is a single deal in the catalog.
type Coupon struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Code        string     `gorm:"size:64" json:"code"`
	Type        CouponType `gorm:"size:16;not null;default:'percent'" json:"type"`
	Discount    string     `gorm:"size:64" json:"discount"`
	Description string     `gorm:"type:text" json:"description"`
	URL         string     `gorm:"size:512" json:"url"`
	StoreID     uint       `gorm:"index;not null" json:"store_id"`
	CategoryID  uint       `gorm:"index;not null" json:"category_id"`
	ExpiresAt   *time.Time `gorm:"index" json:"expires_at"`
	Exclusive   bool       `gorm:"not null;default:false" json:"exclusive"`
	Verified    bool       `gorm:"not null;default:false" json:"verified"`
	Active      bool       `gorm:"not null;default:true;index" json:"active"`
	UsedCount   int64      `gorm:"not null;default:0" json:"used_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Store       Store      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"store"`
	Category    Category   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category"`
}

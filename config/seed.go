package config

import (
	"time"

	"gorm.io/gorm"

	"github.com/dealspot/dealspot/models"
)

// SeedDemoCatalog inserts a small demo catalog when the database holds no
// categories yet. It is idempotent and must be invoked explicitly by the
// composition root; nothing seeds as a side effect of package init.
func SeedDemoCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Electronics", Slug: "electronics", Icon: "cpu"},
		{Name: "Fashion", Slug: "fashion", Icon: "shirt"},
		{Name: "Food & Drink", Slug: "food-drink", Icon: "utensils"},
		{Name: "Travel", Slug: "travel", Icon: "plane"},
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	stores := []models.Store{
		{Name: "TechBay", Slug: "techbay", Website: "https://techbay.example.com", Description: "Gadgets and accessories.", Active: true},
		{Name: "WearHouse", Slug: "wearhouse", Website: "https://wearhouse.example.com", Description: "Clothing for everyone.", Active: true},
		{Name: "SnackCity", Slug: "snackcity", Website: "https://snackcity.example.com", Description: "Snacks delivered.", Active: true},
	}
	if err := db.Create(&stores).Error; err != nil {
		return err
	}

	in30 := time.Now().AddDate(0, 1, 0)
	coupons := []models.Coupon{
		{
			Title:      "15% off all laptops",
			Code:       "LAPTOP15",
			Type:       models.CouponTypePercent,
			Discount:   "15%",
			URL:        "https://techbay.example.com/laptops",
			StoreID:    stores[0].ID,
			CategoryID: categories[0].ID,
			ExpiresAt:  &in30,
			Verified:   true,
			Active:     true,
		},
		{
			Title:      "$10 off orders over $50",
			Code:       "SAVE10",
			Type:       models.CouponTypeFixed,
			Discount:   "$10",
			URL:        "https://wearhouse.example.com",
			StoreID:    stores[1].ID,
			CategoryID: categories[1].ID,
			ExpiresAt:  &in30,
			Exclusive:  true,
			Active:     true,
		},
		{
			Title:      "Free shipping on snack boxes",
			Type:       models.CouponTypeFreeShip,
			Discount:   "Free shipping",
			URL:        "https://snackcity.example.com/boxes",
			StoreID:    stores[2].ID,
			CategoryID: categories[2].ID,
			Active:     true,
		},
	}
	return db.Create(&coupons).Error
}

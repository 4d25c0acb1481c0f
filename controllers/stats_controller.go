package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/utils"
)

// StatsController provides marketplace statistics such as counts and daily views.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the marketplace.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var couponCount int64
	var storeCount int64
	var viewsToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := s.db.Model(&models.Coupon{}).Where("active = ?", true).Count(&couponCount).Error; err != nil {
		couponCount = 0
	}
	if err := s.db.Model(&models.Store{}).Where("active = ?", true).Count(&storeCount).Error; err != nil {
		storeCount = 0
	}

	// Use string date equality to avoid timezone/type mismatches with DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.ViewStat{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&viewsToday).Error; err != nil {
		viewsToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":   userCount,
		"coupon_count": couponCount,
		"store_count":  storeCount,
		"views_today":  viewsToday,
	})
}

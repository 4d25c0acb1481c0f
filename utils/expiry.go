package utils

import (
	"time"

	"github.com/dealspot/dealspot/config"
	"github.com/dealspot/dealspot/models"
)

// StartCouponExpirySweeper launches a background goroutine that periodically
// deactivates coupons whose expiry date has passed. It is best-effort and
// logs failures.
func StartCouponExpirySweeper(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			res := config.DB().Model(&models.Coupon{}).
				Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, time.Now()).
				Update("active", false)
			if res.Error != nil {
				Sugar.Warnf("coupon expiry sweep failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				Sugar.Infof("coupon expiry sweep deactivated %d coupons", res.RowsAffected)
				InvalidateByPrefix("cache:coupons:list:")
			}
		}
	}()
}

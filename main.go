package main

import (
	"time"

	"github.com/dealspot/dealspot/config"
	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/rewards"
	"github.com/dealspot/dealspot/routes"
	"github.com/dealspot/dealspot/services"
	"github.com/dealspot/dealspot/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.PointsLog{},
		&models.CheckIn{},
		&models.WithdrawalRequest{},
		&models.Category{},
		&models.Store{},
		&models.Coupon{},
		&models.ViewStat{},
	)

	if cfg.SeedDemoData {
		if err := config.SeedDemoCatalog(db); err != nil {
			utils.Sugar.Warnf("demo catalog seeding failed: %v", err)
		}
	}

	rules := rewards.DefaultRules()
	rules.BasePoints = cfg.CheckInBasePoints
	rules.BonusPoints = cfg.CheckInBonusPoints
	rules.SpinMin = cfg.SpinMinPoints
	rules.SpinMax = cfg.SpinMaxPoints
	rules.Cooldown = time.Duration(cfg.RewardCooldownHours) * time.Hour
	rules.StreakBreak = 2 * rules.Cooldown
	rewardsSvc := services.NewRewardsService(db, rules)

	r := routes.SetupRouter(db, rewardsSvc)

	// Deactivate expired coupons in the background (best-effort)
	utils.StartCouponExpirySweeper(time.Duration(cfg.CouponExpirySweepMinutes) * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/config"
	"github.com/dealspot/dealspot/controllers"
	"github.com/dealspot/dealspot/middleware"
	"github.com/dealspot/dealspot/services"
	"github.com/dealspot/dealspot/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, rewardsSvc *services.RewardsService) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record coupon/store detail views after each request
	r.Use(middleware.ViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	couponController := controllers.NewCouponController(db)
	catalogController := controllers.NewCatalogController(db)
	rewardsController := controllers.NewRewardsController(db, rewardsSvc)
	withdrawalController := controllers.NewWithdrawalController(db, rewardsSvc)
	statsController := controllers.NewStatsController(db)
	configController := controllers.NewConfigController()

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public catalog
	api.GET("/coupons", couponController.List)
	api.GET("/coupons/:id", couponController.Get)
	api.POST("/coupons/:id/redeem", couponController.Redeem)
	api.GET("/stores", catalogController.ListStores)
	api.GET("/stores/:id", catalogController.GetStore)
	api.GET("/categories", catalogController.ListCategories)

	// Public misc
	api.GET("/stats", statsController.GetStats)
	api.GET("/config/footer", configController.GetFooter)
	api.GET("/config/notice", configController.GetNotice)
	api.GET("/users/:id", authController.GetUserPublic)

	// Rewards endpoints mutate per-user state; rate limit them as a group
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/rewards/check-in", rewardsController.CheckIn)
	protected.GET("/rewards/streak", rewardsController.Streak)
	protected.POST("/rewards/spin", rewardsController.Spin)
	protected.GET("/rewards/spin-status", rewardsController.SpinStatus)
	protected.GET("/rewards/points", rewardsController.Points)
	protected.POST("/withdrawals", withdrawalController.Create)
	protected.GET("/withdrawals", withdrawalController.ListMine)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.GET("/users", authController.ListUsers)
	admin.PATCH("/users/:id/ban", authController.SetBan)
	admin.POST("/coupons", couponController.Create)
	admin.PUT("/coupons/:id", couponController.Update)
	admin.DELETE("/coupons/:id", couponController.Delete)
	admin.POST("/stores", catalogController.CreateStore)
	admin.PUT("/stores/:id", catalogController.UpdateStore)
	admin.DELETE("/stores/:id", catalogController.DeleteStore)
	admin.POST("/categories", catalogController.CreateCategory)
	admin.PUT("/categories/:id", catalogController.UpdateCategory)
	admin.DELETE("/categories/:id", catalogController.DeleteCategory)
	admin.GET("/withdrawals", withdrawalController.AdminList)
	admin.PUT("/withdrawals/:id/status", withdrawalController.SetStatus)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

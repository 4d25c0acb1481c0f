package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/utils"
)

// CouponController serves the public coupon catalog and the admin coupon CRUD.
type CouponController struct {
	db *gorm.DB
}

// NewCouponController creates a new controller instance.
func NewCouponController(db *gorm.DB) *CouponController {
	return &CouponController{db: db}
}

// List returns paginated active coupons with optional search and filters.
// A search term that exactly matches a store name filters by that store
// instead of running the LIKE search.
func (c *CouponController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	categorySlug := strings.TrimSpace(ctx.Query("category"))
	storeSlug := strings.TrimSpace(ctx.Query("store"))

	// Cache unfiltered-by-search lists to avoid cache key explosion
	var cacheKey string
	if search == "" {
		cacheKey = fmt.Sprintf("cache:coupons:list:cat=%s:store=%s:page=%d:size=%d", categorySlug, storeSlug, page, pageSize)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := c.db.Model(&models.Coupon{}).Preload("Store").Preload("Category").
		Where("coupons.active = ?", true).
		Order("coupons.created_at DESC")

	if search != "" {
		// Exact store name wins over fuzzy matching
		var store models.Store
		if err := c.db.Where("name = ?", search).First(&store).Error; err == nil {
			query = query.Where("coupons.store_id = ?", store.ID)
		} else {
			like := "%" + search + "%"
			query = query.Where("coupons.title LIKE ? OR coupons.description LIKE ?", like, like)
		}
	}
	if categorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = coupons.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	if storeSlug != "" {
		query = query.Joins("JOIN stores ON stores.id = coupons.store_id").
			Where("stores.slug = ?", storeSlug)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to count coupons")
		return
	}

	var coupons []models.Coupon
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&coupons).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to retrieve coupons")
		return
	}

	payload := gin.H{
		"items":      coupons,
		"pagination": paginationMeta(page, pageSize, total),
	}
	if cacheKey != "" {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, 10*time.Minute)
	}
	utils.Success(ctx, payload)
}

// Get returns one coupon with its store and category.
func (c *CouponController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid coupon id")
		return
	}

	var coupon models.Coupon
	if err := c.db.Preload("Store").Preload("Category").First(&coupon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40480, "coupon not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to retrieve coupon")
		return
	}

	utils.Success(ctx, coupon)
}

// Redeem records a coupon click and returns the outbound URL and code. The
// counter is advisory; no points are involved.
func (c *CouponController) Redeem(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid coupon id")
		return
	}

	var coupon models.Coupon
	if err := c.db.First(&coupon, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40480, "coupon not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to retrieve coupon")
		return
	}
	if !coupon.Active {
		utils.Error(ctx, http.StatusGone, 41080, "coupon is no longer active")
		return
	}

	// Atomic increment; a lost click under extreme contention is acceptable
	if err := c.db.Model(&models.Coupon{}).Where("id = ?", id).
		Update("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		utils.Sugar.Warnf("coupon click increment failed: %v", err)
	}

	utils.Success(ctx, gin.H{
		"code": coupon.Code,
		"url":  coupon.URL,
	})
}

// Create adds a coupon (admin only).
func (c *CouponController) Create(ctx *gin.Context) {
	var req couponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid request payload")
		return
	}
	coupon, ok := req.validate(ctx, c.db)
	if !ok {
		return
	}

	if err := c.db.Create(coupon).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to create coupon")
		return
	}

	utils.InvalidateByPrefix("cache:coupons:list:")
	utils.Success(ctx, coupon)
}

// Update modifies a coupon (admin only).
func (c *CouponController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid coupon id")
		return
	}

	var existing models.Coupon
	if err := c.db.First(&existing, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40480, "coupon not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to retrieve coupon")
		return
	}

	var req couponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid request payload")
		return
	}
	coupon, ok := req.validate(ctx, c.db)
	if !ok {
		return
	}

	coupon.ID = existing.ID
	coupon.UsedCount = existing.UsedCount
	coupon.CreatedAt = existing.CreatedAt
	if err := c.db.Save(coupon).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to update coupon")
		return
	}

	utils.InvalidateByPrefix("cache:coupons:list:")
	utils.Success(ctx, coupon)
}

// Delete removes a coupon (admin only).
func (c *CouponController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid coupon id")
		return
	}

	res := c.db.Delete(&models.Coupon{}, id)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to delete coupon")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40480, "coupon not found")
		return
	}

	utils.InvalidateByPrefix("cache:coupons:list:")
	utils.Success(ctx, gin.H{"message": "coupon deleted"})
}

type couponRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Code        string     `json:"code"`
	Type        string     `json:"type" binding:"required,oneof=percent fixed freeship"`
	Discount    string     `json:"discount"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	StoreID     uint       `json:"store_id" binding:"required"`
	CategoryID  uint       `json:"category_id" binding:"required"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Exclusive   bool       `json:"exclusive"`
	Verified    bool       `json:"verified"`
	Active      *bool      `json:"active"`
}

// validate checks referenced rows and builds the model. Writes the error
// response and returns false on failure.
func (r *couponRequest) validate(ctx *gin.Context, db *gorm.DB) (*models.Coupon, bool) {
	var store models.Store
	if err := db.First(&store, r.StoreID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "unknown store")
		return nil, false
	}
	var category models.Category
	if err := db.First(&category, r.CategoryID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40083, "unknown category")
		return nil, false
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return &models.Coupon{
		Title:       strings.TrimSpace(r.Title),
		Code:        strings.TrimSpace(r.Code),
		Type:        models.CouponType(r.Type),
		Discount:    strings.TrimSpace(r.Discount),
		Description: utils.Sanitize(r.Description),
		URL:         strings.TrimSpace(r.URL),
		StoreID:     r.StoreID,
		CategoryID:  r.CategoryID,
		ExpiresAt:   r.ExpiresAt,
		Exclusive:   r.Exclusive,
		Verified:    r.Verified,
		Active:      active,
	}, true
}

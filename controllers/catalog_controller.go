package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/utils"
)

// CatalogController serves stores and categories: public browsing plus the
// admin CRUD endpoints.
type CatalogController struct {
	db *gorm.DB
}

// NewCatalogController creates a new controller instance.
func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{db: db}
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ListStores returns paginated active stores.
func (c *CatalogController) ListStores(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:stores:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	query := c.db.Model(&models.Store{}).Where("active = ?", true).Order("name ASC")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to count stores")
		return
	}

	var stores []models.Store
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&stores).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to retrieve stores")
		return
	}

	payload := gin.H{
		"items":      stores,
		"pagination": paginationMeta(page, pageSize, total),
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 10*time.Minute)
	utils.Success(ctx, payload)
}

// GetStore returns one store with its active coupons.
func (c *CatalogController) GetStore(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid store id")
		return
	}

	var store models.Store
	if err := c.db.Preload("Coupons", "active = ?", true).First(&store, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40490, "store not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to retrieve store")
		return
	}

	utils.Success(ctx, gin.H{
		"store":   store,
		"coupons": store.Coupons,
	})
}

// ListCategories returns all categories.
func (c *CatalogController) ListCategories(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:categories:list"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var categories []models.Category
	if err := c.db.Order("name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to retrieve categories")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: categories}
	utils.CacheSetJSON("cache:categories:list", wrapper, time.Hour)
	utils.Success(ctx, categories)
}

// CreateStore adds a store (admin only).
func (c *CatalogController) CreateStore(ctx *gin.Context) {
	store, ok := c.bindStore(ctx, 0)
	if !ok {
		return
	}

	if err := c.db.Create(store).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to create store")
		return
	}

	utils.InvalidateByPrefix("cache:stores:list:")
	utils.Success(ctx, store)
}

// UpdateStore modifies a store (admin only).
func (c *CatalogController) UpdateStore(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid store id")
		return
	}

	var existing models.Store
	if err := c.db.First(&existing, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40490, "store not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to retrieve store")
		return
	}

	store, ok := c.bindStore(ctx, id)
	if !ok {
		return
	}
	store.ID = existing.ID
	store.CreatedAt = existing.CreatedAt

	if err := c.db.Save(store).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to update store")
		return
	}

	utils.InvalidateByPrefix("cache:stores:list:")
	utils.InvalidateByPrefix("cache:coupons:list:")
	utils.Success(ctx, store)
}

// DeleteStore removes a store and its coupons (admin only).
func (c *CatalogController) DeleteStore(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid store id")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&models.Coupon{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Store{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40490, "store not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to delete store")
		return
	}

	utils.InvalidateByPrefix("cache:stores:list:")
	utils.InvalidateByPrefix("cache:coupons:list:")
	utils.Success(ctx, gin.H{"message": "store deleted"})
}

// CreateCategory adds a category (admin only).
func (c *CatalogController) CreateCategory(ctx *gin.Context) {
	category, ok := c.bindCategory(ctx, 0)
	if !ok {
		return
	}

	if err := c.db.Create(category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to create category")
		return
	}

	utils.InvalidateByPrefix("cache:categories:list")
	utils.Success(ctx, category)
}

// UpdateCategory modifies a category (admin only).
func (c *CatalogController) UpdateCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid category id")
		return
	}

	var existing models.Category
	if err := c.db.First(&existing, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40491, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to retrieve category")
		return
	}

	category, ok := c.bindCategory(ctx, id)
	if !ok {
		return
	}
	category.ID = existing.ID
	category.CreatedAt = existing.CreatedAt

	if err := c.db.Save(category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50099, "failed to update category")
		return
	}

	utils.InvalidateByPrefix("cache:categories:list")
	utils.InvalidateByPrefix("cache:coupons:list:")
	utils.Success(ctx, category)
}

// DeleteCategory removes a category; its coupons must be moved first.
func (c *CatalogController) DeleteCategory(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid category id")
		return
	}

	var inUse int64
	if err := c.db.Model(&models.Coupon{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to check category usage")
		return
	}
	if inUse > 0 {
		utils.Error(ctx, http.StatusConflict, 40903, "category still has coupons")
		return
	}

	res := c.db.Delete(&models.Category{}, id)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to delete category")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40491, "category not found")
		return
	}

	utils.InvalidateByPrefix("cache:categories:list")
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

func (c *CatalogController) bindStore(ctx *gin.Context, selfID uint) (*models.Store, bool) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=128"`
		Slug        string `json:"slug" binding:"required,min=1,max=128"`
		LogoURL     string `json:"logo_url"`
		Website     string `json:"website"`
		Description string `json:"description"`
		Active      *bool  `json:"active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid request payload")
		return nil, false
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugRe.MatchString(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40093, "slug must be lowercase letters, digits and hyphens")
		return nil, false
	}
	if c.slugTaken(&models.Store{}, slug, selfID) {
		utils.Error(ctx, http.StatusConflict, 40904, "slug already exists")
		return nil, false
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &models.Store{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		LogoURL:     strings.TrimSpace(req.LogoURL),
		Website:     strings.TrimSpace(req.Website),
		Description: utils.Sanitize(req.Description),
		Active:      active,
	}, true
}

func (c *CatalogController) bindCategory(ctx *gin.Context, selfID uint) (*models.Category, bool) {
	var req struct {
		Name string `json:"name" binding:"required,min=1,max=64"`
		Slug string `json:"slug" binding:"required,min=1,max=64"`
		Icon string `json:"icon"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40094, "invalid request payload")
		return nil, false
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugRe.MatchString(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40093, "slug must be lowercase letters, digits and hyphens")
		return nil, false
	}
	if c.slugTaken(&models.Category{}, slug, selfID) {
		utils.Error(ctx, http.StatusConflict, 40904, "slug already exists")
		return nil, false
	}

	return &models.Category{
		Name: strings.TrimSpace(req.Name),
		Slug: slug,
		Icon: strings.TrimSpace(req.Icon),
	}, true
}

func (c *CatalogController) slugTaken(model interface{}, slug string, selfID uint) bool {
	q := c.db.Model(model).Where("slug = ?", slug)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

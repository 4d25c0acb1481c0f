package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/services"
	"github.com/dealspot/dealspot/utils"
)

// WithdrawalController exposes the withdrawal request workflow: users create
// and list their requests, admins resolve them.
type WithdrawalController struct {
	db  *gorm.DB
	svc *services.RewardsService
}

// NewWithdrawalController creates a new controller instance.
func NewWithdrawalController(db *gorm.DB, svc *services.RewardsService) *WithdrawalController {
	return &WithdrawalController{db: db, svc: svc}
}

// Create files a withdrawal request and debits the points.
func (w *WithdrawalController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !requireActiveUser(ctx, w.db, userID) {
		return
	}

	var req struct {
		Amount int    `json:"amount" binding:"required,gt=0"`
		Method string `json:"method" binding:"required,min=1,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	request, err := w.svc.RequestWithdrawal(ctx.Request.Context(), userID, req.Amount, strings.TrimSpace(req.Method))
	if err != nil {
		rewardsError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(publicUserCacheKey(userID))
	utils.Success(ctx, request)
}

// ListMine returns the caller's withdrawal requests.
func (w *WithdrawalController) ListMine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	items, total, err := w.svc.ListWithdrawals(ctx.Request.Context(), userID, "", page, pageSize)
	if err != nil {
		rewardsError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// AdminList returns withdrawal requests across all users, optionally
// filtered by status.
func (w *WithdrawalController) AdminList(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := models.WithdrawalStatus(strings.TrimSpace(ctx.Query("status")))

	items, total, err := w.svc.ListWithdrawals(ctx.Request.Context(), 0, status, page, pageSize)
	if err != nil {
		rewardsError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// SetStatus resolves a pending request. Rejection refunds the debited points.
func (w *WithdrawalController) SetStatus(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid withdrawal request id")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid request payload")
		return
	}

	request, err := w.svc.ResolveWithdrawal(ctx.Request.Context(), id,
		models.WithdrawalStatus(strings.TrimSpace(req.Status)), strings.TrimSpace(req.Notes))
	if err != nil {
		rewardsError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(publicUserCacheKey(request.UserID))
	utils.Success(ctx, request)
}

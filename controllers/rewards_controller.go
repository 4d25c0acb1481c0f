package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/rewards"
	"github.com/dealspot/dealspot/utils"
)

// RewardsController exposes the check-in, spin, and points ledger endpoints.
type RewardsController struct {
	db     *gorm.DB
	engine rewards.Engine
}

// NewRewardsController creates a new controller instance.
func NewRewardsController(db *gorm.DB, engine rewards.Engine) *RewardsController {
	return &RewardsController{db: db, engine: engine}
}

// CheckIn performs the daily check-in for the authenticated user.
func (r *RewardsController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !requireActiveUser(ctx, r.db, userID) {
		return
	}

	result, err := r.engine.CheckIn(ctx.Request.Context(), userID)
	if err != nil {
		rewardsError(ctx, err)
		return
	}
	if result.Success {
		utils.InvalidateByPrefix(publicUserCacheKey(userID))
	}
	utils.Success(ctx, result)
}

// Streak returns the user's check-in state without side effects.
func (r *RewardsController) Streak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	info, err := r.engine.StreakInfo(ctx.Request.Context(), userID)
	if err != nil {
		rewardsError(ctx, err)
		return
	}
	utils.Success(ctx, info)
}

// Spin performs a wheel spin for the authenticated user.
func (r *RewardsController) Spin(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !requireActiveUser(ctx, r.db, userID) {
		return
	}

	result, err := r.engine.Spin(ctx.Request.Context(), userID)
	if err != nil {
		rewardsError(ctx, err)
		return
	}
	if result.Success {
		utils.InvalidateByPrefix(publicUserCacheKey(userID))
	}
	utils.Success(ctx, result)
}

// SpinStatus returns spin eligibility without side effects.
func (r *RewardsController) SpinStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	status, err := r.engine.SpinStatus(ctx.Request.Context(), userID)
	if err != nil {
		rewardsError(ctx, err)
		return
	}
	utils.Success(ctx, status)
}

// Points returns the cached balance and a page of ledger history.
func (r *RewardsController) Points(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	balance, err := r.engine.Balance(ctx.Request.Context(), userID)
	if err != nil {
		rewardsError(ctx, err)
		return
	}

	entries, total, err := r.engine.History(ctx.Request.Context(), userID, page, pageSize)
	if err != nil {
		rewardsError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"balance":    balance,
		"entries":    entries,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// rewardsError maps core errors onto the JSON envelope.
func rewardsError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, rewards.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, "not found")
	case errors.Is(err, rewards.ErrInsufficientBalance):
		utils.Error(ctx, http.StatusBadRequest, 40060, "insufficient points balance")
	case errors.Is(err, rewards.ErrAlreadyProcessed):
		utils.Error(ctx, http.StatusConflict, 40902, "withdrawal request already processed")
	case errors.Is(err, rewards.ErrInvalidStatus):
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid withdrawal status")
	default:
		utils.Sugar.Errorf("rewards operation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50060, "internal error")
	}
}

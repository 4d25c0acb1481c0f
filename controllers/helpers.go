package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dealspot/dealspot/middleware"
	"github.com/dealspot/dealspot/models"
	"github.com/dealspot/dealspot/utils"
)

// getUserID extracts the authenticated user id set by the auth middleware.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, pageSize := 1, 10
	if v := strings.TrimSpace(pageStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(sizeStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

// requireActiveUser loads the caller and rejects banned accounts. Returns
// false after writing the error response.
func requireActiveUser(ctx *gin.Context, db *gorm.DB, userID uint) bool {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return false
	}
	if user.IsBanned {
		utils.Error(ctx, http.StatusForbidden, 40302, "account is banned")
		return false
	}
	return true
}

package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// Non-numeric id values must be rejected before they reach the query builder;
// gorm would otherwise interpolate them as a raw WHERE clause.
func TestGetUserPublicRejectsNonNumericID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []string{
		"1 OR 1=1",
		"1;DROP TABLE users",
		"abc",
		"",
		"0",
		"-1",
	}
	a := NewAuthController(nil) // must never touch the database below
	for _, id := range cases {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/x", nil)
		ctx.Params = gin.Params{{Key: "id", Value: id}}

		a.GetUserPublic(ctx)

		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want %d", id, w.Code, http.StatusBadRequest)
		}
	}
}

func TestPublicUserCacheKey(t *testing.T) {
	if got := publicUserCacheKey(7); got != "cache:user:public:7" {
		t.Fatalf("cache key = %q", got)
	}
}

package middleware

import "testing"

func TestIsDetailPath(t *testing.T) {
	cases := map[string]bool{
		"/api/v1/coupons/42":        true,
		"/api/v1/stores/7":          true,
		"/api/v1/coupons":           false,
		"/api/v1/stores":            false,
		"/api/v1/coupons/42/redeem": false,
		"/api/v1/coupons/":          false,
		"/health":                   false,
		"/api/v1/categories":        false,
	}
	for path, want := range cases {
		if got := isDetailPath(path); got != want {
			t.Errorf("isDetailPath(%q) = %v, want %v", path, got, want)
		}
	}
}

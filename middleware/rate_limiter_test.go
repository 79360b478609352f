package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"meetsync/config"
	"meetsync/middleware"

	"github.com/gin-gonic/gin"
)

func TestRateLimitUsesConfiguredCeiling(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.MaxRequestsPerMin = 2

	router := gin.New()
	router.Use(middleware.RateLimitMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send(); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the configured ceiling is hit, got %d", code)
	}
}

package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/vdmx/riskintel/internal/config"
	"go.uber.org/zap"
)

func TestNewDisabledWithoutRedis(t *testing.T) {
	l, err := New(config.Config{RedisAddr: ""})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if l.Enabled() {
		t.Fatalf("limiter enabled without redis")
	}

	res, err := l.AllowIP(context.Background(), "203.0.113.9")
	if err != nil || !res.Allowed {
		t.Fatalf("disabled limiter must allow, got (%+v, %v)", res, err)
	}
}

func TestNewRejectsBadWindow(t *testing.T) {
	_, err := New(config.Config{RedisAddr: "localhost:6379", RateLimitRequests: 0, RateLimitWindowSec: 900})
	if err == nil {
		t.Fatalf("expected error for zero request budget")
	}
}

func TestMiddlewarePassesThroughWhenDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(nil, nil, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

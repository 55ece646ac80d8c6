package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func limitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterExhaustsBurst(t *testing.T) {
	// Near-zero refill so the burst is the whole budget.
	r := limitedRouter(NewRateLimiter(rate.Every(time.Hour), 3))

	for i := 0; i < 3; i++ {
		if code := hit(r, "203.0.113.7"); code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, code)
		}
	}
	if code := hit(r, "203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("over-budget request: status %d, want 429", code)
	}
}

func TestRateLimiterIsPerIP(t *testing.T) {
	r := limitedRouter(NewRateLimiter(rate.Every(time.Hour), 1))

	if code := hit(r, "203.0.113.7"); code != http.StatusOK {
		t.Fatalf("first ip: status %d, want 200", code)
	}
	if code := hit(r, "203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("first ip again: status %d, want 429", code)
	}
	if code := hit(r, "198.51.100.9"); code != http.StatusOK {
		t.Fatalf("second ip: status %d, want 200", code)
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    *sync.RWMutex
	rate  rate.Limit
	burst int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		ips:   make(map[string]*rate.Limiter),
		mu:    &sync.RWMutex{},
		rate:  r,
		burst: b,
	}
}

func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.ips[ip]; exists {
		return limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.ips[ip] = limiter
	return limiter
}

// Middleware rejects requests over the bucket's budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.GetLimiter(ip).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Tiers matching how hard each surface may be hit: the general API is
// generous, order submission is tight, login attempts are tighter still.

// APIRateLimit allows 100 requests per minute per IP.
func APIRateLimit() gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute/100), 20).Middleware()
}

// OrderRateLimit allows 10 order submissions per minute per IP.
func OrderRateLimit() gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute/10), 5).Middleware()
}

// LoginRateLimit allows 5 login attempts per 15 minutes per IP.
func LoginRateLimit() gin.HandlerFunc {
	return NewRateLimiter(rate.Every(15*time.Minute/5), 3).Middleware()
}

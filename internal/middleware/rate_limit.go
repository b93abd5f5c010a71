package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused client limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client key and forgets keys that
// stayed idle for limiterIdleTTL.
type IPRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	r         rate.Limit // requests per second
	b         int        // burst
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		r:       r,
		b:       b,
		now:     time.Now,
	}
}

func (i *IPRateLimiter) GetLimiter(key string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= limiterIdleTTL {
		for k, c := range i.clients {
			if now.Sub(c.lastSeen) >= limiterIdleTTL {
				delete(i.clients, k)
			}
		}
		i.lastSweep = now
	}

	c, exists := i.clients[key]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(i.r, i.b)}
		i.clients[key] = c
	}
	c.lastSeen = now

	return c.limiter
}

// Len reports how many client keys are tracked.
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

// RateLimitByIP limits each client IP to r requests per second with burst b.
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewIPRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Error(c, http.StatusTooManyRequests, apperror.CodeTooManyRequests, "too many requests from this IP", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

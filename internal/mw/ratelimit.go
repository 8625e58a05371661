package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor tracks one client's limiter and when it was last used so
// idle entries can be evicted.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorLimiter keeps a rate limiter per client IP.
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	b        int
}

func newVisitorLimiter(r rate.Limit, b int) *visitorLimiter {
	vl := &visitorLimiter{
		visitors: make(map[string]*visitor),
		r:        r,
		b:        b,
	}
	go vl.evictLoop()
	return vl
}

func (vl *visitorLimiter) get(ip string) *rate.Limiter {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	v, ok := vl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vl.r, vl.b)}
		vl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// evictLoop drops visitors not seen for ten minutes so the map does
// not grow without bound.
func (vl *visitorLimiter) evictLoop() {
	for range time.Tick(time.Minute) {
		cutoff := time.Now().Add(-10 * time.Minute)
		vl.mu.Lock()
		for ip, v := range vl.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(vl.visitors, ip)
			}
		}
		vl.mu.Unlock()
	}
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	vl := newVisitorLimiter(r, b)
	return func(c *gin.Context) {
		if !vl.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// CleanupInterval is how often idle limiters are dropped
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is how long a client's limiter survives without requests
	LimiterTTL = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute int
	burst     int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with bursts of up to burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		perMinute: perMinute,
		burst:     burst,
		stopCh:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (r *RateLimiter) Allow(client string) bool {
	return r.entry(client).limiter.Allow()
}

// Remaining approximates the tokens left in the client's bucket
func (r *RateLimiter) Remaining(client string) int {
	tokens := int(r.entry(client).limiter.Tokens())
	if tokens < 0 {
		return 0
	}
	return tokens
}

func (r *RateLimiter) entry(client string) *limiterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.limiters[client]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(float64(r.perMinute)/60.0), r.burst)}
		r.limiters[client] = e
	}
	e.lastSeen = time.Now()
	return e
}

func (r *RateLimiter) retryAfter() time.Duration {
	if r.perMinute <= 0 {
		return time.Minute
	}
	d := time.Minute / time.Duration(r.perMinute)
	if d < time.Second {
		return time.Second
	}
	return d
}

func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := time.Now()
			for client, e := range r.limiters {
				if now.Sub(e.lastSeen) > LimiterTTL {
					delete(r.limiters, client)
				}
			}
			r.mu.Unlock()
		case <-r.stopCh:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// RateLimit rejects requests beyond the client's budget with 429
func RateLimit(rl *RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.perMinute))

		if !rl.Allow(client) {
			retryAfter := int(rl.retryAfter().Seconds())
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			logger.Warn("Rate limit exceeded",
				"client_ip", client,
				"path", c.Request.URL.Path,
				"correlation_id", GetCorrelationID(c),
			)

			abortWithError(c, http.StatusTooManyRequests, "RATE_LIMITED",
				fmt.Sprintf("Too many requests, retry after %d seconds", retryAfter))
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", rl.Remaining(client)))
		c.Next()
	}
}

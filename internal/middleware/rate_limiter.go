package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// RateLimiter is a per-IP fixed-window limiter. Each instance owns its map.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, entries: make(map[string]*rateEntry)}
}

// Middleware rejects requests over the limit with 429 and Retry-After.
// A non-positive limit disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()

		rl.mu.Lock()
		entry, exists := rl.entries[ip]
		if !exists {
			entry = &rateEntry{}
			rl.entries[ip] = entry
		}
		rl.mu.Unlock()

		entry.mu.Lock()
		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(rl.window)
		}
		entry.count++
		over := entry.count > rl.limit
		retryAfter := int(time.Until(entry.windowEnd).Seconds()) + 1
		entry.mu.Unlock()

		if over {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries to prevent memory leaks from
// accumulating IPs that never return.

const purgeInterval = 5 * time.Minute

// StartPurge runs until ctx is cancelled.
func (rl *RateLimiter) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.purge(time.Now())
			}
		}
	}()
}

func (rl *RateLimiter) purge(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	purged := 0
	for ip, entry := range rl.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(rl.entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(rl.entries)).
			Msg("rate limiter map purged")
	}
	return purged
}

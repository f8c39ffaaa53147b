package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vitorf997/packing-creator/internal/apierror"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type rateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	ips    map[string]*rateEntry
}

// RateLimiter limits each client IP to limit requests per window.
// A limit <= 0 disables limiting.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rl := &rateLimiter{limit: limit, window: window, ips: map[string]*rateEntry{}}
	go rl.purgeLoop()
	return rl.handle
}

func (rl *rateLimiter) handle(c *gin.Context) {
	ip := c.ClientIP()

	rl.mu.Lock()
	entry, exists := rl.ips[ip]
	if !exists {
		entry = &rateEntry{}
		rl.ips[ip] = entry
	}
	rl.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(rl.window)
	}

	entry.count++
	if entry.count > rl.limit {
		c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
		return
	}
	c.Next()
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Drops expired entries so IPs that never return do not accumulate.

const purgeInterval = 5 * time.Minute

func (rl *rateLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		if n := rl.purge(now); n > 0 {
			log.Debug().Int("purged", n).Msg("rate limiter entries purged")
		}
	}
}

func (rl *rateLimiter) purge(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	purged := 0
	for ip, entry := range rl.ips {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(rl.ips, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}

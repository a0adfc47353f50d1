package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/wellbeing-index/internal/infra/config"
)

// rateLimitMiddleware applies a per-client token bucket. Every coordinate
// lookup may fan out to three upstream calls, so the index endpoints sit
// behind it.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newClientLimiter(cfg, time.Now)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, wait := limiter.take(ip)
		if ok {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path, "retry_after", wait)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

type clientLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	perSec   float64
	burst    float64
	idleTTL  time.Duration
	now      func() time.Time
	lastScan time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newClientLimiter(cfg config.RateLimitConfig, now func() time.Time) *clientLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		buckets: make(map[string]*bucket),
		perSec:  float64(cfg.RequestsPerMinute) / 60,
		burst:   float64(burst),
		idleTTL: 5 * time.Minute,
		now:     now,
	}
}

// take consumes a token for key. When none is left it returns how long until
// the next one is available.
func (l *clientLimiter) take(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	} else if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+elapsed*l.perSec)
		b.lastSeen = now
	}
	l.evictIdle(now)

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, time.Duration(missing / l.perSec * float64(time.Second))
	}
	b.tokens--
	return true, 0
}

func (l *clientLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastScan) < time.Minute {
		return
	}
	l.lastScan = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}

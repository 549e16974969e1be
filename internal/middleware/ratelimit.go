// Package middleware holds HTTP middleware for the control API.
package middleware

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vslauncher/launcher/internal/domain"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity   int
	tokens     float64 // Use float for precise refill
	refillRate int     // tokens per second
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request should be allowed
func (tb *TokenBucket) Allow() bool {
	allowed, _ := tb.take()
	return allowed
}

// take consumes a token when one is available and reports the whole tokens left
func (tb *TokenBucket) take() (bool, int) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	// Refill tokens based on elapsed time (fractional)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*float64(tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true, int(tb.tokens)
	}

	return false, 0
}

type limit struct {
	capacity   int
	refillRate int
}

// RateLimiter keeps one token bucket per client and route class
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mutex   sync.RWMutex

	defaultCapacity   int
	defaultRefillRate int

	// Keyed by "METHOD path-prefix"
	endpointLimits map[string]limit
}

// NewRateLimiter creates a new rate limiter with configurable parameters
func NewRateLimiter(rps, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets:           make(map[string]*TokenBucket),
		defaultCapacity:   burst,
		defaultRefillRate: rps,
		endpointLimits:    make(map[string]limit),
	}

	// Progress polling is frequent, starting work is not
	rl.endpointLimits["GET /v1/downloads"] = limit{burst * 4, rps * 4}
	rl.endpointLimits["POST /v1/downloads"] = limit{max(burst/4, 1), max(rps/4, 1)}
	rl.endpointLimits["POST /v1/instances"] = limit{max(burst/2, 1), max(rps/2, 1)}
	rl.endpointLimits["GET /v1/mods"] = limit{max(burst/2, 1), max(rps/2, 1)}
	rl.endpointLimits["GET /health"] = limit{20, 2}

	return rl
}

// getBucket gets or creates a token bucket for a client+endpoint combination
func (rl *RateLimiter) getBucket(clientID, endpoint string) *TokenBucket {
	key := clientID + ":" + endpoint

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if exists {
		return bucket
	}

	// Create new bucket
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	// Double-check after acquiring write lock
	if bucket, exists := rl.buckets[key]; exists {
		return bucket
	}

	limits, exists := rl.endpointLimits[endpoint]
	if !exists {
		limits = limit{rl.defaultCapacity, rl.defaultRefillRate}
	}

	bucket = NewTokenBucket(limits.capacity, limits.refillRate)
	rl.buckets[key] = bucket

	return bucket
}

// getClientID extracts client identifier from request
func (rl *RateLimiter) getClientID(c *fiber.Ctx) string {
	if client := c.Get("X-Client-Name"); client != "" {
		return "client:" + client
	}
	return "ip:" + c.IP()
}

// endpointKey maps a request onto its configured route class
func (rl *RateLimiter) endpointKey(c *fiber.Ctx) string {
	path := c.Path()
	for _, prefix := range []string{"/v1/downloads", "/v1/instances", "/v1/mods", "/health"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			key := c.Method() + " " + prefix
			if _, ok := rl.endpointLimits[key]; ok {
				return key
			}
		}
	}
	return c.Method() + " " + path
}

// Middleware returns a Fiber middleware for rate limiting
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := rl.getClientID(c)
		endpoint := rl.endpointKey(c)

		bucket := rl.getBucket(clientID, endpoint)
		allowed, remaining := bucket.take()

		c.Set("X-RateLimit-Limit", strconv.Itoa(bucket.capacity))

		if !allowed {
			appErr := domain.NewAppError(
				domain.ErrRateLimit,
				"Rate limit exceeded",
				429,
				map[string]any{
					"client_id":   clientID,
					"endpoint":    endpoint,
					"retry_after": "1",
				},
			).WithContext(c.UserContext(), "rate_limit")

			c.Set("Retry-After", "1")
			c.Set("X-RateLimit-Remaining", "0")

			return c.Status(appErr.StatusCode).JSON(map[string]any{
				"status":  "error",
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
		}

		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		return c.Next()
	}
}

// CleanupOldBuckets removes unused buckets to prevent memory leaks
func (rl *RateLimiter) CleanupOldBuckets() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, bucket := range rl.buckets {
		bucket.mutex.Lock()
		idle := now.Sub(bucket.lastRefill)
		bucket.mutex.Unlock()
		// Remove buckets that haven't been used in the last hour
		if idle > time.Hour {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up old buckets
// Returns a stop function to cancel the routine
func (rl *RateLimiter) StartCleanupRoutine() (stop func()) {
	ticker := time.NewTicker(10 * time.Minute)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				rl.CleanupOldBuckets()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	limits := make(map[string]map[string]int, len(rl.endpointLimits))
	for endpoint, l := range rl.endpointLimits {
		limits[endpoint] = map[string]int{"capacity": l.capacity, "refill_rate": l.refillRate}
	}

	stats := map[string]any{
		"active_buckets":      len(rl.buckets),
		"default_capacity":    rl.defaultCapacity,
		"default_refill_rate": rl.defaultRefillRate,
		"endpoint_limits":     limits,
	}

	return stats
}

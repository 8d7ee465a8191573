package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/YadavAkhileshh/CrackBano/internal/auth"
)

// DefaultAIRequestsPerMinute is the per-user budget for AI routes.
const DefaultAIRequestsPerMinute = 30

type RateLimiterConfig struct {
	// PerMinute is the sustained number of requests each user may make.
	PerMinute int
	// Burst is how many requests may arrive at once. Zero uses PerMinute.
	Burst int
	// CleanupInterval is how often idle limiters are dropped. Entries idle
	// for twice this long are removed.
	CleanupInterval time.Duration
}

func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		PerMinute:       DefaultAIRequestsPerMinute,
		Burst:           DefaultAIRequestsPerMinute,
		CleanupInterval: 5 * time.Minute,
	}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a token bucket per user id. Call Stop to end the cleanup
// goroutine.
type RateLimiter struct {
	perMinute int
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	logger    *slog.Logger

	mu       sync.RWMutex
	limiters map[string]*userLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(cfg RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = DefaultAIRequestsPerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.PerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		perMinute: cfg.PerMinute,
		limit:     rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:     cfg.Burst,
		ttl:       2 * cfg.CleanupInterval,
		logger:    logger,
		limiters:  make(map[string]*userLimiter),
		stopCh:    make(chan struct{}),
	}
	go rl.cleanupLoop(cfg.CleanupInterval)
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware enforces the limit for the user RequireAuth put in the
// context, so it must be mounted after RequireAuth.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}

		if !rl.limiterFor(userID).Allow() {
			rl.logger.Warn("rate limit exceeded",
				slog.String("userID", userID),
				slog.String("path", r.URL.Path),
			)
			rl.writeTooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LimiterCount returns how many users currently have a limiter.
func (rl *RateLimiter) LimiterCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(userID string) *rate.Limiter {
	now := time.Now()

	rl.mu.RLock()
	ul, ok := rl.limiters[userID]
	rl.mu.RUnlock()
	if ok {
		rl.mu.Lock()
		ul.lastAccess = now
		rl.mu.Unlock()
		return ul.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if ul, ok := rl.limiters[userID]; ok {
		ul.lastAccess = now
		return ul.limiter
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[userID] = &userLimiter{limiter: l, lastAccess: now}
	return l
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for userID, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > rl.ttl {
			delete(rl.limiters, userID)
		}
	}
}

// writeTooManyRequests answers 429 with Retry-After set to the seconds
// until one token is refilled.
func (rl *RateLimiter) writeTooManyRequests(w http.ResponseWriter) {
	retryAfter := int(math.Ceil(60.0 / float64(rl.perMinute)))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   code,
		"message": message,
		"success": false,
	})
}

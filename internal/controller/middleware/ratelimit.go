package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per account.
type RateLimiter struct {
	limit      float64
	burst      int
	ttl        time.Duration
	maxEntries int
	limiters   *expirable.LRU[uuid.UUID, *rate.Limiter]
}

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// WithLimit sets the sustained rate (requests per second) and burst. A limit <= 0 means unlimited.
func WithLimit(limit float64, burst int) Option {
	return func(rl *RateLimiter) {
		rl.limit = limit
		rl.burst = burst
	}
}

// WithTTL sets how long an idle account keeps its bucket.
func WithTTL(ttl time.Duration) Option {
	return func(rl *RateLimiter) { rl.ttl = ttl }
}

// WithMaxEntries bounds the number of tracked accounts.
func WithMaxEntries(n int) Option {
	return func(rl *RateLimiter) { rl.maxEntries = n }
}

// NewRateLimiter creates a limiter. The default is 5 req/s with a burst of 10.
func NewRateLimiter(opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		limit:      5,
		burst:      10,
		ttl:        5 * time.Minute,
		maxEntries: 10000,
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.burst < 1 {
		rl.burst = 1
	}
	rl.limiters = expirable.NewLRU[uuid.UUID, *rate.Limiter](rl.maxEntries, nil, rl.ttl)
	return rl
}

func (rl *RateLimiter) limiterFor(id uuid.UUID) *rate.Limiter {
	if limiter, ok := rl.limiters.Get(id); ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Limit(rl.limit), rl.burst)
	rl.limiters.Add(id, limiter)
	return limiter
}

// Middleware limits each authenticated account. It must run after AuthMiddleware.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := AccountIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if rl.limit > 0 && !rl.limiterFor(accountID).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client's bucket is kept before the
// janitor removes it.
const staleAfter = 5 * time.Minute

// RateLimiter implements in-memory per-IP rate limiting with token
// buckets. Protects the auth endpoints from abuse; the limiter's bucket
// map is the only guarded mutable state in the process.
//
// On limit exceeded:
//   - Returns 429 Too Many Requests
//   - Sets Retry-After and X-RateLimit-* headers
//   - Logs the violation for monitoring
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit // Refill rate in requests per second
	burst    int        // Bucket capacity
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing requestsPerMinute
// sustained requests per client, with a burst of the same size. A
// background janitor evicts buckets idle for more than five minutes.
//
// Example:
//
//	limiter := middleware.NewRateLimiter(100)
//	r.With(limiter.Limit("auth")).Get("/api/auth/login", authHandler.Login)
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
	}

	go rl.janitor()

	return rl
}

// Limit creates middleware that applies rate limiting to an endpoint.
// Buckets are keyed by client IP and endpoint identifier, so different
// endpoints can be limited independently.
func (rl *RateLimiter) Limit(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ExtractClientIP(r)
			limiter := rl.visitorLimiter(ip + ":" + endpoint)

			if !limiter.Allow() {
				log.Warn().
					Str("ip", ip).
					Str("endpoint", endpoint).
					Msg("Rate limit exceeded")

				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "60")

				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.Tokens())))

			next.ServeHTTP(w, r)
		})
	}
}

// visitorLimiter returns the bucket for a key, creating it on first use.
func (rl *RateLimiter) visitorLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

// janitor periodically evicts buckets that have been idle long enough to
// be refilled anyway.
func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for key, v := range rl.visitors {
			if time.Since(v.lastSeen) > staleAfter {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

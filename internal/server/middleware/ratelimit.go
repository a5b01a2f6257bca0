package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/cssmap/internal/server/response"
)

// RateLimiter implements fixed-window rate limiting per client address.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int           // requests per window
	window   time.Duration // window length
	logger   *zerolog.Logger
	now      func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per minute per
// address. Stale visitors are evicted until ctx is done.
func NewRateLimiter(ctx context.Context, limit int, logger *zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   time.Minute,
		logger:   logger,
		now:      time.Now,
	}
	go rl.cleanup(ctx, 5*time.Minute)
	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(2 * every)
		}
	}
}

func (rl *RateLimiter) evict(olderThan time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for addr, v := range rl.visitors {
		if rl.now().Sub(v.lastReset) > olderThan {
			delete(rl.visitors, addr)
		}
	}
}

// Allow reports whether a request from addr is within the limit.
func (rl *RateLimiter) Allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[addr]
	if !ok || now.Sub(v.lastReset) > rl.window {
		v = &visitor{tokens: rl.limit, lastReset: now}
		rl.visitors[addr] = v
	}
	if v.tokens == 0 {
		return false
	}
	v.tokens--
	return true
}

// RateLimit rejects requests over the limit with 429. The client address
// is r.RemoteAddr, which chi's RealIP middleware has already resolved.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(r.RemoteAddr) {
				rl.logger.Warn().
					Str("addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				response.RateLimited(w, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// internal/api/ratelimit.go
package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/charted-dev/charted/internal/common"
)

// RateLimiter caps requests per caller IP using one token bucket per
// address; the map is bounded so an attacker spraying source addresses
// can't grow it without limit.
type RateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*rate.Limiter
	requestsPerSecond rate.Limit
	burstSize         int
	maxTracked        int
}

// NewRateLimiter builds a limiter allowing requestsPerSecond sustained
// requests per identity, with bursts up to burstSize.
func NewRateLimiter(requestsPerSecond float64, burstSize int) *RateLimiter {
	return &RateLimiter{
		limiters:          make(map[string]*rate.Limiter),
		requestsPerSecond: rate.Limit(requestsPerSecond),
		burstSize:         burstSize,
		maxTracked:        10_000,
	}
}

func (rl *RateLimiter) allow(identity string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) >= rl.maxTracked {
		rl.limiters = make(map[string]*rate.Limiter)
	}

	limiter, ok := rl.limiters[identity]
	if !ok {
		limiter = rate.NewLimiter(rl.requestsPerSecond, rl.burstSize)
		rl.limiters[identity] = limiter
	}
	return limiter.Allow()
}

// rateLimitMiddleware rejects a request with CodeRateLimited once the
// caller's bucket is exhausted. It runs before route-level auth resolves
// an Identity, so it keys strictly on remote address.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			key = host
		}

		if !s.rateLimiter.allow(key) {
			writeErr(w, s.logger, common.NewError(common.CodeRateLimited, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

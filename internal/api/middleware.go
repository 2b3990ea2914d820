// internal/api/middleware.go
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/auth"
)

// loggingMiddleware logs one line per request, tracks the server's
// lifetime request counter, and records the request in Prometheus,
// grounded on the teacher's server.go equivalent.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.requestCount, 1)
		start := time.Now()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", elapsed),
		)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.observeRequest(r.Method, route, ww.Status(), elapsed.Seconds())
	})
}

// requireAuth builds middleware that evaluates the Authorization header
// against policy via the auth gate and, on success, attaches the resolved
// Identity to the request context. Failure short-circuits with the typed
// envelope error the gate returned.
func (s *Server) requireAuth(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := s.instance.Gate.Authenticate(r.Context(), r.Header.Get("Authorization"), policy)
			if err != nil {
				writeErr(w, s.logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

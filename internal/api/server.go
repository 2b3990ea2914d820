// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/auth"
	"github.com/charted-dev/charted/internal/common"
)

const (
	orgCreateScope     = common.ScopeOrgCreate
	orgUpdateScope     = common.ScopeOrgUpdate
	orgDeleteScope     = common.ScopeOrgDelete
	repoCreateScope    = common.ScopeRepoCreate
	repoUpdateScope    = common.ScopeRepoUpdate
	repoDeleteScope    = common.ScopeRepoDelete
	releaseUploadScope = common.ScopeReleaseUpload
	releaseDeleteScope = common.ScopeRepoReleasesDelete
)

// Server is the HTTP surface spec.md §4.10 describes, wrapping an Instance
// with the chi router and request counters, grounded on the teacher's
// server.go shape.
type Server struct {
	instance   *Instance
	logger     *zap.Logger
	router      chi.Router
	httpServer  *http.Server
	metrics     *Metrics
	rateLimiter *RateLimiter

	requestCount int64
	errorCount   int64
}

// NewServer builds the router and binds it to an http.Server; it does not
// start listening until Start is called.
func NewServer(instance *Instance) *Server {
	s := &Server{
		instance:    instance,
		logger:      instance.Logger,
		router:      chi.NewRouter(),
		metrics:     NewMetrics(),
		rateLimiter: NewRateLimiter(instance.Config.Server.RequestsPerSecond, instance.Config.Server.Burst),
	}

	s.router.Use(s.rateLimitMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", instance.Config.Server.Host, instance.Config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleEntrypoint)
	s.router.Get("/v1", s.handleEntrypoint)
	s.router.Get("/v1/info", s.handleInfo)
	s.router.Get("/v1/heartbeat", s.handleHeartbeat)
	s.router.Get("/v1/features", s.handleFeatures)
	s.router.Get("/v1/openapi.json", s.handleOpenAPI)
	s.router.Get("/v1/indexes/{idOrName}", s.handleIndex)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/v1/users", func(r chi.Router) {
		r.With(s.requireAuth(auth.Public())).Post("/", s.handleCreateUser)
		r.Post("/login", s.handleLogin)
		r.With(s.requireAuth(auth.Policy{RequireRefreshToken: true})).
			Delete("/sessions/{uuid}", s.handleRevokeSession)

		r.Route("/{idOrName}", func(r chi.Router) {
			r.With(s.requireAuth(auth.Public())).Get("/", s.handleGetUser)
			r.With(s.requireAuth(auth.Authenticated())).Patch("/", s.handlePatchUser)
			r.With(s.requireAuth(auth.Authenticated())).Delete("/", s.handleDeleteUser)
		})
	})

	s.router.Route("/v1/organizations", func(r chi.Router) {
		r.With(s.requireAuth(auth.RequiringScopes(orgCreateScope))).Post("/", s.handleCreateOrganization)
		r.Route("/{idOrName}", func(r chi.Router) {
			r.With(s.requireAuth(auth.Public())).Get("/", s.handleGetOrganization)
			r.With(s.requireAuth(auth.RequiringScopes(orgUpdateScope))).Patch("/", s.handlePatchOrganization)
			r.With(s.requireAuth(auth.RequiringScopes(orgDeleteScope))).Delete("/", s.handleDeleteOrganization)
		})
	})

	s.router.Route("/v1/repositories", func(r chi.Router) {
		r.With(s.requireAuth(auth.RequiringScopes(repoCreateScope))).Post("/", s.handleCreateRepository)
		r.Route("/{idOrName}", func(r chi.Router) {
			r.With(s.requireAuth(auth.Public())).Get("/", s.handleGetRepository)
			r.With(s.requireAuth(auth.RequiringScopes(repoUpdateScope))).Patch("/", s.handlePatchRepository)
			r.With(s.requireAuth(auth.RequiringScopes(repoDeleteScope))).Delete("/", s.handleDeleteRepository)

			r.Route("/releases", func(r chi.Router) {
				r.With(s.requireAuth(auth.Public())).Get("/", s.handleListReleases)
				r.Route("/{semver}", func(r chi.Router) {
					r.With(s.requireAuth(auth.Public())).Get("/", s.handleGetRelease)
					r.With(s.requireAuth(auth.RequiringScopes(releaseUploadScope))).
						Put("/tarball", s.handleUploadTarball)
					r.With(s.requireAuth(auth.Public())).Get("/tarball", s.handleDownloadTarball)
					r.With(s.requireAuth(auth.RequiringScopes(releaseDeleteScope))).
						Delete("/", s.handleDeleteRelease)
				})
			})
		})
	})

	s.router.Route("/v1/apikeys", func(r chi.Router) {
		r.With(s.requireAuth(auth.Authenticated())).Post("/", s.handleCreateApiKey)
		r.With(s.requireAuth(auth.Authenticated())).Get("/", s.handleListApiKeys)
		r.With(s.requireAuth(auth.Authenticated())).Delete("/{id}", s.handleDeleteApiKey)
	})
}

func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.instance.Sessions.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() chi.Router {
	return s.router
}

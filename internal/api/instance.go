// internal/api/instance.go
package api

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/auth"
	"github.com/charted-dev/charted/internal/cache"
	"github.com/charted-dev/charted/internal/charts"
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/config"
	"github.com/charted-dev/charted/internal/repository"
	"github.com/charted-dev/charted/internal/sessions"
	"github.com/charted-dev/charted/internal/storage"
)

// Instance is the process-wide set of collaborators every handler closes
// over: the repositories, the chart engine, the auth gate, and the config
// the server was started with. It is built once in main and never copied.
type Instance struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sql.DB

	Users         *repository.Repository[repository.User, repository.UserPatch]
	Organizations *repository.Repository[repository.Organization, repository.OrganizationPatch]
	Repositories  *repository.Repository[repository.Repository, repository.RepositoryPatch]
	Releases      *repository.Repository[repository.RepositoryRelease, repository.RepositoryReleasePatch]
	ApiKeys       *repository.Repository[repository.ApiKey, repository.ApiKeyPatch]

	Charts    *charts.Engine
	Sessions  *sessions.Manager
	Gate      *auth.Gate
	Snowflake *common.Snowflake

	StartedAt time.Time
}

// NewInstance wires every collaborator from its already-constructed parts.
// driver and worker/store are built by main from CHARTED_* configuration
// (§4.4a/§4.6a's variant selection); NewInstance itself is variant-blind.
func NewInstance(
	cfg *config.Config,
	logger *zap.Logger,
	db *sql.DB,
	driver storage.Driver,
	worker cache.Worker,
	store cache.SessionStore,
	snowflake *common.Snowflake,
	basicEnabled bool,
) *Instance {
	users := repository.New[repository.User, repository.UserPatch](db, worker, "users", repository.UserMapper{}, logger)
	orgs := repository.New[repository.Organization, repository.OrganizationPatch](db, worker, "organizations", repository.OrganizationMapper{}, logger)
	repos := repository.New[repository.Repository, repository.RepositoryPatch](db, worker, "repositories", repository.RepositoryMapper{}, logger)
	releases := repository.New[repository.RepositoryRelease, repository.RepositoryReleasePatch](db, worker, "repositories:releases", repository.RepositoryReleaseMapper{}, logger)
	apiKeys := repository.New[repository.ApiKey, repository.ApiKeyPatch](db, worker, "apikeys", repository.ApiKeyMapper{}, logger)

	manager := sessions.NewManager(store, []byte(cfg.JWTSecretKey), logger)
	gate := auth.NewGate(users, db, manager, auth.LocalBackend{}, basicEnabled)
	engine := charts.NewEngine(driver, logger)

	return &Instance{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		Users:         users,
		Organizations: orgs,
		Repositories:  repos,
		Releases:      releases,
		ApiKeys:       apiKeys,
		Charts:        engine,
		Sessions:      manager,
		Gate:          gate,
		Snowflake:     snowflake,
		StartedAt:     time.Now(),
	}
}

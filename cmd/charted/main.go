// cmd/charted/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/charted-dev/charted/internal/api"
	"github.com/charted-dev/charted/internal/cache"
	"github.com/charted-dev/charted/internal/common"
	"github.com/charted-dev/charted/internal/config"
	"github.com/charted-dev/charted/internal/database"
	"github.com/charted-dev/charted/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "server":
		err = runServer(os.Args[2:])
	case "migrations":
		err = runMigrations(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: charted server --config <path>")
	fmt.Fprintln(os.Stderr, "       charted migrations list --config <path>")
	fmt.Fprintln(os.Stderr, "       charted migrations run  --config <path>")
}

func loadConfig(args []string, fs string) (*config.Config, error) {
	set := flag.NewFlagSet(fs, flag.ContinueOnError)
	path := set.String("config", os.Getenv("CHARTED_CONFIG_PATH"), "path to the YAML config file")
	if err := set.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.LogLevel == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runServer wires every collaborator the spec's §4 components describe from
// cfg and blocks serving HTTP until an interrupt or SIGTERM arrives.
func runServer(args []string) error {
	cfg, err := loadConfig(args, "server")
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dbCfg, err := database.ConfigFromURL(cfg.Database.URL, cfg.Database.Username, cfg.Database.Password)
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	pg, err := database.NewPostgres(dbCfg, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() { _ = pg.Close() }()

	if err := pg.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	driver, err := buildStorageDriver(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("build storage driver: %w", err)
	}

	worker := buildCacheWorker(cfg, logger)
	store := buildSessionStore(cfg)

	snowflake, err := common.NewSnowflake(1)
	if err != nil {
		return fmt.Errorf("build snowflake generator: %w", err)
	}

	instance := api.NewInstance(cfg, logger, pg.DB(), driver, worker, store, snowflake, true)
	server := api.NewServer(instance)

	shutdown := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
		close(shutdown)
	}()

	logger.Info("server starting",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Kind),
		zap.String("cache", cfg.Cache.Strategy))

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	<-shutdown
	return nil
}

// runMigrations implements the CLI's "migrations list|run" surface. The
// registry ships one fixture schema (internal/database.schemaStatements),
// applied idempotently via CREATE TABLE IF NOT EXISTS; there is no
// versioned migration ladder to step through.
func runMigrations(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("migrations: expected \"list\" or \"run\"")
	}

	sub, rest := args[0], args[1:]
	cfg, err := loadConfig(rest, "migrations "+sub)
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		fmt.Println("0001_initial_schema  (users, organizations, repositories, repository_releases, api_keys)")
		return nil
	case "run":
		logger, err := newLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		dbCfg, err := database.ConfigFromURL(cfg.Database.URL, cfg.Database.Username, cfg.Database.Password)
		if err != nil {
			return fmt.Errorf("database config: %w", err)
		}
		pg, err := database.NewPostgres(dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer func() { _ = pg.Close() }()

		if err := pg.CreateTables(context.Background()); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
		fmt.Println("0001_initial_schema applied")
		return nil
	default:
		return fmt.Errorf("migrations: unknown subcommand %q", sub)
	}
}

// buildStorageDriver selects the blob store backend from cfg.Storage.Kind,
// per spec.md §4.4a's driver-selection note.
func buildStorageDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Driver, error) {
	switch cfg.Storage.Kind {
	case "s3":
		return storage.NewS3Driver(ctx, storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: os.Getenv("CHARTED_STORAGE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CHARTED_STORAGE_S3_SECRET_KEY"),
		}, logger)
	case "filesystem", "":
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
		return storage.NewLocalDriver(cfg.Storage.Path, logger)
	default:
		return nil, fmt.Errorf("unknown storage.kind %q", cfg.Storage.Kind)
	}
}

// buildCacheWorker selects the cache worker variant from
// CHARTED_CACHE_STRATEGY, per spec.md §4.6a.
func buildCacheWorker(cfg *config.Config, logger *zap.Logger) cache.Worker {
	switch cfg.Cache.Strategy {
	case "redis":
		return cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL, int(cfg.Cache.MaxObjectSize), logger)
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL, int(cfg.Cache.MaxObjectSize), logger)
	}
}

func buildSessionStore(cfg *config.Config) cache.SessionStore {
	if cfg.Cache.Strategy == "redis" {
		return cache.NewRedisSessionStore(cfg.Cache.RedisAddr)
	}
	return cache.NewMemorySessionStore()
}

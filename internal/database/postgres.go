// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// Config holds the connection parameters for the relational store.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN builds the libpq connection string for cfg.
func (cfg Config) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	if cfg.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Database, sslMode)
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
}

// ConfigFromURL parses a "postgres://[user[:password]@]host[:port]/dbname"
// URL into a Config. username/password override whatever the URL carries
// when non-empty, matching CHARTED_DATABASE_USERNAME / _PASSWORD taking
// precedence over a URL-embedded credential.
func ConfigFromURL(rawURL, username, password string) (Config, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Config{}, fmt.Errorf("parse database url: %w", err)
	}

	port := 5432
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}

	cfg := Config{
		Host:     u.Hostname(),
		Port:     port,
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Password = pw
		}
	}
	if username != "" {
		cfg.User = username
	}
	if password != "" {
		cfg.Password = password
	}
	return cfg, nil
}

// Postgres wraps the relational connection pool shared by every entity
// repository.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgres opens a pooled connection and tunes it the way a long-running
// registry server needs: bounded open/idle connections, bounded lifetime.
func NewPostgres(cfg Config, logger *zap.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db, logger: logger}, nil
}

// DB exposes the underlying pool for packages that issue their own queries
// (entity repositories, schema bring-up).
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping verifies connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// CreateTables brings the schema up for local/dev bring-up and tests. The
// actual migration files are out of scope for this core; this mirrors the
// teacher's CreateTables helper for fixture parity.
func (p *Postgres) CreateTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// internal/database/schema.go
package database

// schemaStatements is the Go-level fixture schema for the five entity
// tables. Real deployments apply versioned migration files (out of scope
// per the core's mandate); this is what CreateTables issues for local
// bring-up and integration tests.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		name VARCHAR(32) NOT NULL UNIQUE,
		display_name VARCHAR(255),
		email VARCHAR(320) NOT NULL UNIQUE,
		password_hash TEXT,
		description TEXT,
		avatar_hash VARCHAR(255),
		gravatar_email VARCHAR(320),
		admin BOOLEAN NOT NULL DEFAULT FALSE,
		verified_publisher BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS organizations (
		id BIGINT PRIMARY KEY,
		name VARCHAR(32) NOT NULL UNIQUE,
		display_name VARCHAR(255),
		owner_id BIGINT NOT NULL REFERENCES users(id),
		gravatar_email VARCHAR(320),
		icon_hash VARCHAR(255),
		private BOOLEAN NOT NULL DEFAULT FALSE,
		verified_publisher BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS repositories (
		id BIGINT PRIMARY KEY,
		name VARCHAR(32) NOT NULL,
		owner_id BIGINT NOT NULL,
		description TEXT,
		icon_hash VARCHAR(255),
		chart_type VARCHAR(16) NOT NULL DEFAULT 'application',
		private BOOLEAN NOT NULL DEFAULT FALSE,
		deprecated BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(owner_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS repository_releases (
		id BIGINT PRIMARY KEY,
		repository_id BIGINT NOT NULL REFERENCES repositories(id),
		tag VARCHAR(255) NOT NULL,
		update_text TEXT,
		prerelease BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(repository_id, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id BIGINT PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id),
		name VARCHAR(32) NOT NULL,
		description TEXT,
		token_hash TEXT NOT NULL,
		scopes BIGINT NOT NULL DEFAULT 0,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(owner_id, name)
	)`,
}

// internal/config/env.go
package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv overlays the CHARTED_* environment variables documented in
// the spec onto cfg. Unrecognized variables are ignored.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CHARTED_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("CHARTED_DATABASE_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("CHARTED_DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CHARTED_DATABASE_SCHEMA"); v != "" {
		cfg.Database.Schema = v
	}
	if v := os.Getenv("CHARTED_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CHARTED_CACHE_STRATEGY"); v != "" {
		cfg.Cache.Strategy = v
	}
	if v := os.Getenv("CHARTED_MAX_OBJECT_CACHE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Cache.MaxObjectSize = n
		}
	}
	if v := os.Getenv("CHARTED_CACHE_INMEMORY_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTL = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("CHARTED_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			cfg.Server.LogLevel = "debug"
		}
	}
	if v := os.Getenv("CHARTED_DISTRIBUTION_KIND"); v != "" {
		cfg.DistributionKind = v
	}
	// CHARTED_CONFIG_PATH is read by the cmd/charted entrypoint before Load
	// is called, not here.
}

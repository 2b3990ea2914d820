// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document. Unknown top-level keys
// are rejected at load time.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	Cache         CacheConfig         `yaml:"cache"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	JWTSecretKey  string              `yaml:"jwt_secret_key"`
	SingleUser    bool                `yaml:"single_user"`
	Registrations RegistrationsConfig `yaml:"registrations"`

	// DistributionKind is unconfigurable via the document itself - it comes
	// only from CHARTED_DISTRIBUTION_KIND, reporting how this instance was
	// packaged (e.g. "kubernetes", "git") for /v1/info consumers.
	DistributionKind string `yaml:"-"`
}

type ServerConfig struct {
	Port     int    `yaml:"port" default:"8080"`
	Host     string `yaml:"host" default:"0.0.0.0"`
	LogLevel string `yaml:"log_level" default:"info"`

	// RequestsPerSecond and Burst bound the per-IP token bucket the HTTP
	// server applies ahead of routing.
	RequestsPerSecond float64 `yaml:"requests_per_second" default:"100"`
	Burst             int     `yaml:"burst" default:"200"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Schema   string `yaml:"schema" default:"public"`
	Path     string `yaml:"path"` // embedded store, dev only
}

type StorageConfig struct {
	// Kind selects the blob store driver: "filesystem" | "s3".
	Kind     string `yaml:"kind" default:"filesystem"`
	Path     string `yaml:"path" default:"./data"`
	Bucket   string `yaml:"bucket"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
}

type CacheConfig struct {
	// Strategy selects the cache worker: "inmemory" | "redis".
	Strategy      string        `yaml:"strategy" default:"inmemory"`
	MaxObjectSize int64         `yaml:"max_object_size" default:"1048576"`
	TTL           time.Duration `yaml:"ttl" default:"15m"`
	RedisAddr     string        `yaml:"redis_addr"`
}

type SessionsConfig struct {
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" default:"48h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" default:"168h"`
}

type RegistrationsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// Default returns a Config with the spec's documented defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Host: "0.0.0.0", LogLevel: "info", RequestsPerSecond: 100, Burst: 200},
		Storage: StorageConfig{
			Kind: "filesystem",
			Path: "./data",
		},
		Database: DatabaseConfig{Schema: "public"},
		Cache: CacheConfig{
			Strategy:      "inmemory",
			MaxObjectSize: 1 << 20, // 1 MiB
			TTL:           15 * time.Minute,
		},
		Sessions: SessionsConfig{
			AccessTokenTTL:  48 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Registrations: RegistrationsConfig{Enabled: true},
	}
}

// Load reads a YAML config file at path, merged onto the documented
// defaults, and then overlaid with recognized CHARTED_* environment
// variables. Unknown top-level keys in the file are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	LoadFromEnv(cfg)
	return cfg, nil
}

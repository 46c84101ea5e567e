package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for hourbook.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, signing keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional dashboard cache)
	Redis RedisConfig `yaml:"redis"`

	// Policy library storage
	Policy PolicyConfig `yaml:"policy"`

	// StoreTimeoutSeconds bounds every call against the database.
	// Expiry surfaces as a Timeout error; callers may retry.
	StoreTimeoutSeconds int `yaml:"store_timeout_seconds" env:"STORE_TIMEOUT_SECONDS" env-default:"8"`

	// MigrationsPath is the directory containing SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// Secret signs self-issued access tokens and session cookies.
	// Server will fail to start if this is not set.
	Secret string `yaml:"-" env:"AUTH_SECRET"`

	// Issuer is the iss claim on self-issued tokens.
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:"hourbook"`

	// TokenTTLMinutes is the lifetime of issued access tokens.
	TokenTTLMinutes int `yaml:"token_ttl_minutes" env:"AUTH_TOKEN_TTL_MINUTES" env-default:"720"`

	// ParentPIN gates admin self-registration. Registration requests that
	// ask for the admin role must present this value.
	ParentPIN string `yaml:"-" env:"PARENT_PIN" env-default:"1094"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs
	// for accepting tokens minted by an external identity provider.
	// Format: "issuer1=url1,issuer2=url2". Empty disables external issuers.
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"hourbook"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"hourbook"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds optional Redis configuration. An empty host disables
// the dashboard analytics cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// PolicyConfig holds policy document storage settings.
type PolicyConfig struct {
	// StorageDir is where uploaded policy PDFs are kept on disk.
	StorageDir string `yaml:"storage_dir" env:"POLICY_STORAGE_DIR" env-default:"data/policies"`
	// MaxUploadBytes caps a single policy upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"POLICY_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. A missing config.yaml is not an error; environment
// variables and defaults apply alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("AUTH_SECRET must be set")
	}

	return cfg, nil
}

// StoreTimeout returns the configured database call deadline.
func (c *Config) StoreTimeout() time.Duration {
	if c.StoreTimeoutSeconds <= 0 {
		return 8 * time.Second
	}
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

// TokenTTL returns the configured access token lifetime.
func (c *AuthConfig) TokenTTL() time.Duration {
	if c.TokenTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// JWKSEndpoints parses the configured issuer=jwks_url pairs.
// Returns an empty map when no external issuers are configured.
func (c *AuthConfig) JWKSEndpoints() map[string]string {
	endpoints := make(map[string]string)
	if c.JWKSEndpointsStr == "" {
		return endpoints
	}
	for _, pair := range strings.Split(c.JWKSEndpointsStr, ",") {
		issuer, url, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || issuer == "" || url == "" {
			continue
		}
		endpoints[issuer] = url
	}
	return endpoints
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

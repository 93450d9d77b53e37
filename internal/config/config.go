package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/JaimeStill/estate/pkg/database"
	"github.com/JaimeStill/estate/pkg/storage"
	"github.com/JaimeStill/estate/pkg/telemetry"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvEstateEnv             = "ESTATE_ENV"
	EnvEstateShutdownTimeout = "ESTATE_SHUTDOWN_TIMEOUT"
	EnvEstateVersion         = "ESTATE_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "ESTATE_DB_DSN",
	Host:            "ESTATE_DB_HOST",
	Port:            "ESTATE_DB_PORT",
	Name:            "ESTATE_DB_NAME",
	User:            "ESTATE_DB_USER",
	Password:        "ESTATE_DB_PASSWORD",
	SSLMode:         "ESTATE_DB_SSL_MODE",
	ApplicationName: "ESTATE_DB_APPLICATION_NAME",
	MaxOpenConns:    "ESTATE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ESTATE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ESTATE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ESTATE_DB_CONN_TIMEOUT",
	StartupRetries:  "ESTATE_DB_STARTUP_RETRIES",
}

var storageEnv = &storage.Env{
	ContainerName:    "ESTATE_STORAGE_CONTAINER_NAME",
	ConnectionString: "ESTATE_STORAGE_CONNECTION_STRING",
	AccountURL:       "ESTATE_STORAGE_ACCOUNT_URL",
	PublicRead:       "ESTATE_STORAGE_PUBLIC_READ",
}

var telemetryEnv = &telemetry.Env{
	Endpoint:        "ESTATE_OTEL_ENDPOINT",
	Insecure:        "ESTATE_OTEL_INSECURE",
	ServiceName:     "ESTATE_OTEL_SERVICE_NAME",
	ShutdownTimeout: "ESTATE_OTEL_SHUTDOWN_TIMEOUT",
}

// Config is the root configuration for the estate service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	Telemetry       telemetry.Config `toml:"telemetry"`
	API             APIConfig        `toml:"api"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the ESTATE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEstateEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load populates the process environment from .env (without overriding
// variables already set), reads config.toml when present, merges the
// config.<ESTATE_ENV>.toml overlay, and finalizes every section.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Telemetry.Merge(&overlay.Telemetry)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Telemetry.Finalize(telemetryEnv); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEstateShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvEstateVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEstateEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

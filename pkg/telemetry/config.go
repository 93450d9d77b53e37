package telemetry

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds OTLP trace export settings. An empty Endpoint disables export.
type Config struct {
	Endpoint        string `toml:"endpoint"`
	Insecure        bool   `toml:"insecure"`
	ServiceName     string `toml:"service_name"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Env maps telemetry config fields to environment variable names for override injection.
type Env struct {
	Endpoint        string
	Insecure        string
	ServiceName     string
	ShutdownTimeout string
}

// Enabled reports whether an exporter endpoint is configured.
func (c *Config) Enabled() bool {
	return c.Endpoint != ""
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Insecure always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	c.Insecure = overlay.Insecure
}

func (c *Config) loadDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "estate"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Insecure != "" {
		if v := os.Getenv(env.Insecure); v != "" {
			if insecure, err := strconv.ParseBool(v); err == nil {
				c.Insecure = insecure
			}
		}
	}
	if env.ServiceName != "" {
		if v := os.Getenv(env.ServiceName); v != "" {
			c.ServiceName = v
		}
	}
	if env.ShutdownTimeout != "" {
		if v := os.Getenv(env.ShutdownTimeout); v != "" {
			c.ShutdownTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

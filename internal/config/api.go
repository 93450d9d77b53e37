package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/estate/pkg/formatting"
	"github.com/JaimeStill/estate/pkg/middleware"
	"github.com/JaimeStill/estate/pkg/pagination"
)

const (
	EnvAPIBasePath      = "ESTATE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "ESTATE_API_MAX_UPLOAD_SIZE"
	EnvAPIRateLimitRPM  = "ESTATE_API_RATE_LIMIT_RPM"

	defaultMaxUploadSize = 50 * 1024 * 1024
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ESTATE_CORS_ENABLED",
	Origins:          "ESTATE_CORS_ORIGINS",
	AllowedMethods:   "ESTATE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ESTATE_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "ESTATE_CORS_EXPOSED_HEADERS",
	AllowCredentials: "ESTATE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ESTATE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "ESTATE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ESTATE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	RateLimitRPM  int                   `toml:"rate_limit_rpm"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes, falling back to 50MB
// when the value does not parse.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.RateLimitRPM != 0 {
		c.RateLimitRPM = overlay.RateLimitRPM
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api/v1"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIRateLimitRPM); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			c.RateLimitRPM = rpm
		}
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") || strings.HasSuffix(c.BasePath, "/") {
		return fmt.Errorf("invalid base_path: %q", c.BasePath)
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must not be negative")
	}
	return nil
}

package middleware

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	ExposedHeaders   []string `toml:"exposed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig.
// List values are comma separated. Empty names are skipped.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	setList(&c.AllowedMethods, "GET", "POST", "PUT", "DELETE", "OPTIONS")
	setList(&c.AllowedHeaders, "Content-Type", "Authorization")
	setList(&c.ExposedHeaders, "x-total-count")
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Booleans always apply; lists apply
// when present and MaxAge when positive.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	for dst, src := range c.lists(overlay) {
		if src != nil {
			*dst = src
		}
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) lists(other *CORSConfig) map[*[]string][]string {
	return map[*[]string][]string{
		&c.Origins:        other.Origins,
		&c.AllowedMethods: other.AllowedMethods,
		&c.AllowedHeaders: other.AllowedHeaders,
		&c.ExposedHeaders: other.ExposedHeaders,
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) {
	for name, dst := range map[string]*[]string{
		env.Origins:        &c.Origins,
		env.AllowedMethods: &c.AllowedMethods,
		env.AllowedHeaders: &c.AllowedHeaders,
		env.ExposedHeaders: &c.ExposedHeaders,
	} {
		if v := lookup(name); v != "" {
			*dst = splitList(v)
		}
	}

	for name, dst := range map[string]*bool{
		env.Enabled:          &c.Enabled,
		env.AllowCredentials: &c.AllowCredentials,
	} {
		if b, err := strconv.ParseBool(lookup(name)); err == nil {
			*dst = b
		}
	}

	if n, err := strconv.Atoi(lookup(env.MaxAge)); err == nil {
		c.MaxAge = n
	}
}

func (c *CORSConfig) validate() error {
	var errs []error
	if c.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("cors max_age must not be negative: %d", c.MaxAge))
	}
	// Browsers reject a wildcard origin on credentialed requests.
	if c.AllowCredentials && len(c.Origins) == 1 && c.Origins[0] == "*" {
		errs = append(errs, errors.New("cors allow_credentials requires explicit origins"))
	}
	return errors.Join(errs...)
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func setList(dst *[]string, defaults ...string) {
	if len(*dst) == 0 {
		*dst = defaults
	}
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

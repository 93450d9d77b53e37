// Package pagination provides offset-range requests and results for list queries.
package pagination

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Config bounds the windows a list request may ask for.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// Env names the environment variables that override Config. Empty names are skipped.
type Env struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = defaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = maxPageSize
	}

	if env != nil {
		for name, dst := range map[string]*int{
			env.DefaultPageSize: &c.DefaultPageSize,
			env.MaxPageSize:     &c.MaxPageSize,
		} {
			if name == "" {
				continue
			}
			if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
				*dst = n
			}
		}
	}

	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.DefaultPageSize < 1 {
		errs = append(errs, errors.New("default_page_size must be positive"))
	}
	if c.MaxPageSize < 1 {
		errs = append(errs, errors.New("max_page_size must be positive"))
	}
	if len(errs) == 0 && c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("default_page_size (%d) cannot exceed max_page_size (%d)", c.DefaultPageSize, c.MaxPageSize))
	}
	return errors.Join(errs...)
}

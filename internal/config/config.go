// Package config loads server settings from KLINIKA_* environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process configuration.
type Config struct {
	DB   string `env:"DB" envDefault:"klinika.sqlite3"`
	Addr string `env:"ADDR" envDefault:":8080"`
	Log  string `env:"LOG"`

	// DefaultClinicCode is the clinic used by requests without an
	// X-Clinic-Code header. Ignored when RequireClinicHeader is set.
	DefaultClinicCode   string `env:"DEFAULT_CLINIC_CODE"`
	RequireClinicHeader bool   `env:"REQUIRE_CLINIC_HEADER" envDefault:"false"`

	CORSOrigins []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	Metrics     bool          `env:"METRICS" envDefault:"true"`
	AdminEmail  string        `env:"ADMIN_EMAIL" envDefault:"admin@klinika.local"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
}

const prefix = "KLINIKA_"

// Load reads envFile (or ./.env when envFile is empty and the file exists)
// into the environment without overriding variables that are already set,
// then parses the configuration.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return parse(env.Options{Prefix: prefix})
}

// FromMap parses the configuration from vars instead of the process
// environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: prefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.DefaultClinicCode = strings.TrimSpace(c.DefaultClinicCode)
	if c.RequireClinicHeader {
		c.DefaultClinicCode = ""
	}

	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins

	if c.TokenTTL <= 0 {
		return fmt.Errorf("%sTOKEN_TTL must be positive, got %s", prefix, c.TokenTTL)
	}
	return nil
}

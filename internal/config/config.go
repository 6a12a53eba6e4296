// Package config provides application configuration loaded from environment variables.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds all application configuration.
// Groups are embedded so every variable keeps its bare name (PORT, DATABASE_PATH...).
type Config struct {
	Server
	Database
	Session
	App
}

// Server holds HTTP server settings.
type Server struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout    time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimitRPS   float64       `envconfig:"RATE_LIMIT_RPS" default:"1"`
	RateLimitBurst int           `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

// Database holds storage settings.
type Database struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path       string `envconfig:"DATABASE_PATH" default:"instance/party_agency.db"`
	DSN        string `envconfig:"DATABASE_DSN"`
	Debug      bool   `envconfig:"DB_DEBUG" default:"false"`
	Migrations bool   `envconfig:"MIGRATIONS" default:"false"`
	Seed       bool   `envconfig:"DB_SEED" default:"true"`
}

// Session holds cookie and anonymous cart storage settings.
type Session struct {
	Secret    string        `envconfig:"SESSION_SECRET" default:"devsessionsecret"`
	Backend   string        `envconfig:"SESSION_BACKEND" default:"memory"`
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	TTL       time.Duration `envconfig:"SESSION_TTL" default:"336h"`
	CacheTTL  time.Duration `envconfig:"PROFILE_CACHE_TTL" default:"1m"`
}

// App holds application-level settings.
type App struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Dev       bool   `envconfig:"DEV" default:"false"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from the environment.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("DATABASE_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	c.Session.Backend = strings.ToLower(c.Session.Backend)
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.Backend != "memory" && c.Session.Backend != "redis" {
		return errors.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}
	return nil
}

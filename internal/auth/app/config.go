package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`

	// Session lifetimes. Access must be strictly shorter than refresh.
	AccessTTL  time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"720h"`

	// SecureCookies should only be off for local plain-HTTP development.
	SecureCookies bool `env:"AUTH_SECURE_COOKIES" envDefault:"true"`

	// SessionSweepInterval controls how often fully expired session rows
	// are purged. Zero disables the sweeper.
	SessionSweepInterval time.Duration `env:"AUTH_SESSION_SWEEP_INTERVAL" envDefault:"1h"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be 1-65535, got %d", c.Port)
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("AUTH_ACCESS_TTL must be positive, got %s", c.AccessTTL)
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("AUTH_REFRESH_TTL must be positive, got %s", c.RefreshTTL)
	}
	if c.AccessTTL >= c.RefreshTTL {
		return fmt.Errorf(
			"AUTH_ACCESS_TTL (%s) must be shorter than AUTH_REFRESH_TTL (%s)",
			c.AccessTTL, c.RefreshTTL,
		)
	}
	if c.DatabaseFile == "" {
		return fmt.Errorf("AUTH_DATABASE_FILE must not be empty")
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"typeface-finance"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"finance"`
	}

	Auth struct {
		Secret string        `envconfig:"AUTH_SECRET" required:"true"`
		TTL    time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
	}

	Scheduler struct {
		Enabled  bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
		Interval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"1h"`
	}

	Ledger struct {
		// MaxAmount is the currency ceiling for a single entry or template.
		MaxAmount string `envconfig:"LEDGER_MAX_AMOUNT" default:"1000000"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) MaxAmount() (decimal.Decimal, error) {
	ceiling, err := decimal.NewFromString(c.Ledger.MaxAmount)
	if err != nil || !ceiling.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid LEDGER_MAX_AMOUNT %q", c.Ledger.MaxAmount)
	}

	return ceiling, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

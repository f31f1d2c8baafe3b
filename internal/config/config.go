package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken     string `envconfig:"BOT_TOKEN" required:"true"`
	DBDriver     string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite|postgres|memory
	DBPath       string `envconfig:"DB_PATH" default:"./data/report-bot.db"`
	DBDSN        string `envconfig:"DB_DSN"`                   // postgres only
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	SendAttempts uint   `envconfig:"SEND_ATTEMPTS" default:"3"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is empty")
	}
	switch c.DBDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.SendAttempts == 0 {
		return fmt.Errorf("SEND_ATTEMPTS must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"afl-api/packages/core/models"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"afl"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"afl.db"`

	GoalLimit    int           `env:"GAME_GOAL_LIMIT" envDefault:"10"`
	TimeLimit    time.Duration `env:"GAME_TIME_LIMIT" envDefault:"30m"`
	ExpirySpec   string        `env:"EXPIRY_SWEEP_SPEC" envDefault:"*/30 * * * * *"`
	DefaultPhoto string        `env:"DEFAULT_PHOTO" envDefault:"img/pin.png"`
}

// Load reads .env when present, then the environment
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("port", cfg.Port).
		Str("db_driver", cfg.DBDriver).
		Str("log_level", cfg.LogLevel).
		Int("goal_limit", cfg.GoalLimit).
		Dur("time_limit", cfg.TimeLimit).
		Str("expiry_spec", cfg.ExpirySpec).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.GoalLimit <= 0 {
		return fmt.Errorf("GAME_GOAL_LIMIT must be positive, got %d", c.GoalLimit)
	}
	if c.TimeLimit <= 0 {
		return fmt.Errorf("GAME_TIME_LIMIT must be positive, got %s", c.TimeLimit)
	}
	return nil
}

func (c *Config) Rules() models.GameRules {
	return models.GameRules{
		GoalLimit: c.GoalLimit,
		TimeLimit: c.TimeLimit,
	}
}

// PostgresDSN returns DATABASE_URL, or a DSN built from the DB_* fields
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

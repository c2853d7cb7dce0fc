package config

import (
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)

	cfg, err := Load(zerolog.Nop())
	assert.Equal(t, nil, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "afl.db", cfg.SQLitePath)
	assert.Equal(t, 10, cfg.Rules().GoalLimit)
	assert.Equal(t, 30*time.Minute, cfg.Rules().TimeLimit)
	assert.Equal(t, "*/30 * * * * *", cfg.ExpirySpec)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("GAME_GOAL_LIMIT", "5")
	t.Setenv("GAME_TIME_LIMIT", "15m")
	t.Setenv("PORT", "9090")

	cfg, err := Load(zerolog.Nop())
	assert.Equal(t, nil, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.GoalLimit)
	assert.Equal(t, 15*time.Minute, cfg.TimeLimit)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GAME_GOAL_LIMIT", "ten")
	_, err := Load(zerolog.Nop())
	assert.NotEqual(t, nil, err)

	t.Setenv("GAME_GOAL_LIMIT", "0")
	_, err = Load(zerolog.Nop())
	assert.NotEqual(t, nil, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", GoalLimit: 10, TimeLimit: time.Minute}
	assert.NotEqual(t, nil, cfg.Validate())

	cfg.DBDriver = DriverSQLite
	assert.Equal(t, nil, cfg.Validate())

	cfg.TimeLimit = 0
	assert.NotEqual(t, nil, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "afl",
		DBPassword: "secret",
		DBName:     "league",
		DBSSLMode:  "disable",
	}
	assert.Equal(t, "host=db user=afl password=secret dbname=league port=5432 sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://afl@db/league"
	assert.Equal(t, "postgres://afl@db/league", cfg.PostgresDSN())
}

package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is read from the environment.
type Config struct {
	Port            int      `env:"BOOKKEEPING_PORT" envDefault:"8080"`
	DBPath          string   `env:"BOOKKEEPING_DB_PATH" envDefault:"bookkeeping.db"`
	LogLevel        string   `env:"BOOKKEEPING_LOG_LEVEL" envDefault:"info"`
	ChartOfAccounts string   `env:"BOOKKEEPING_CHART_OF_ACCOUNTS"`
	CORSOrigins     []string `env:"BOOKKEEPING_CORS_ORIGINS" envSeparator:","`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("BOOKKEEPING_PORT %d out of range", cfg.Port)
	}
	return cfg, nil
}

// NewLogger builds a production JSON logger at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("BOOKKEEPING_LOG_LEVEL: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

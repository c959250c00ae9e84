package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendREST     = "rest"
)

// Config is read once at startup and passed to everything that needs it.
type Config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	AppEnv          string        `env:"APP_ENV" envDefault:"local"`
	DevMode         bool          `env:"DEV_MODE"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	StoreBackend    string        `env:"STORE_BACKEND"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"./tree_clicker.db"`
	SupabaseURL     string        `env:"SUPABASE_URL"`
	SupabaseKey     string        `env:"SUPABASE_KEY"`
	CounterTable    string        `env:"COUNTER_TABLE" envDefault:"total_trees"`
	CORSOrigin      string        `env:"CORS_ORIGIN" envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	TickInterval    time.Duration `env:"TICK_INTERVAL" envDefault:"60s"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")
	c.CounterTable = strings.TrimSpace(c.CounterTable)

	if c.StoreBackend == "" {
		switch {
		case c.DatabaseURL != "":
			c.StoreBackend = BackendPostgres
		case c.SupabaseURL != "":
			c.StoreBackend = BackendREST
		default:
			c.StoreBackend = BackendSQLite
		}
	}
	if !isValidTableName(c.CounterTable) {
		return fmt.Errorf("COUNTER_TABLE %q is not a valid table name", c.CounterTable)
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendREST:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the %s backend", BackendREST)
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s backend", BackendSQLite)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func (c Config) addr() string {
	return "0.0.0.0:" + c.Port
}

package postgres

import (
	"time"

	"txledger/internal/config"
)

// Config holds the subset of the process's database configuration this
// package's pool setup needs.
type Config struct {
	ConnString      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LockTimeout     time.Duration
}

// NewConfigFromAppConfig builds a postgres.Config from the process config.
func NewConfigFromAppConfig(cfg config.DatabaseConfig) *Config {
	return &Config{
		ConnString:      cfg.ConnString(),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LockTimeout:     cfg.LockTimeout,
	}
}

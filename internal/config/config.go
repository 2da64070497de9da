package config

import (
	"context"
	"strings"
)

type contextKey struct{}

// WithContext returns a new context carrying the given Config.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}

// Config holds all configuration for the data gateway.
type Config struct {
	// Database
	DBURL  string
	DBName string

	// Run schema migration (collection/index creation) on startup.
	MigrateAtStart bool

	// DB pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Retention horizon for the cleanup sweeper, in days.
	RetentionDays int

	// AdminID is the sentinel actor id that bypasses visibility filtering.
	AdminID string

	// MetricsLabels is a comma-separated list of key=value pairs added as
	// constant labels to all Prometheus metrics. Values support ${VAR} expansion.
	// Defaults to "service=data-gateway".
	MetricsLabels string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBURL:          "mongodb://localhost:27017",
		DBName:         "workflow_automation",
		MigrateAtStart: true,
		DBMaxOpenConns: 25,
		DBMaxIdleConns: 5,
		RetentionDays:  30,
		AdminID:        "admin",
		MetricsLabels:  "service=data-gateway",
	}
}

// IsAdmin reports whether the actor id is the configured admin sentinel.
func (c *Config) IsAdmin(actorID string) bool {
	if c == nil {
		return false
	}
	return actorID != "" && actorID == c.AdminID
}

// ResolvedDBName returns the configured database name, falling back to the default.
func (c *Config) ResolvedDBName() string {
	if c == nil {
		return DefaultConfig().DBName
	}
	if name := strings.TrimSpace(c.DBName); name != "" {
		return name
	}
	return DefaultConfig().DBName
}

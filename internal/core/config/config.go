package config

import (
	"time"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Sync    SyncConfig    `yaml:"sync"`
}

// ServerConfig holds health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// SyncConfig holds settings for the sync dispatch engine.
type SyncConfig struct {
	// Secret is the shared bearer token, usually ${SYNC_API_SECRET}.
	Secret           string      `yaml:"secret"`
	Orders           TaskConfig  `yaml:"orders"`
	Members          TaskConfig  `yaml:"members"`
	Retry            RetryConfig `yaml:"retry"`
	FailureThreshold int         `yaml:"failure_threshold"`
}

// TaskConfig holds settings for one sync task. Interval is the fixed
// period for the orders task and the default delay for the members task.
type TaskConfig struct {
	URL      string        `yaml:"url"`
	Interval time.Duration `yaml:"interval"`
}

// RetryConfig holds per-cycle retry settings.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	InitialBackoff    time.Duration `yaml:"initial_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

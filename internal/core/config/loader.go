package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Environment variables backing the required configuration values.
const (
	EnvSecret     = "SYNC_API_SECRET"
	EnvOrdersURL  = "ORDERS_SYNC_URL"
	EnvMembersURL = "MEMBERS_SYNC_URL"
)

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Port: 8080},
		Sync: SyncConfig{
			Orders:           TaskConfig{Interval: 10 * time.Minute},
			Members:          TaskConfig{Interval: 5 * time.Minute},
			FailureThreshold: 5,
			Retry: RetryConfig{
				MaxAttempts:       3,
				RequestTimeout:    30 * time.Second,
				InitialBackoff:    2 * time.Second,
				BackoffMultiplier: 2.0,
			},
		},
	}
}

// Load reads configuration from a YAML file. A missing file is not an
// error: the built-in defaults apply and required values come from the
// environment via ApplyEnv.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv fills required values from the environment when the file did
// not provide them. The file wins so deployments can pin URLs per env.
func (c *AppConfig) ApplyEnv() {
	if c.Sync.Secret == "" {
		c.Sync.Secret = os.Getenv(EnvSecret)
	}
	if c.Sync.Orders.URL == "" {
		c.Sync.Orders.URL = os.Getenv(EnvOrdersURL)
	}
	if c.Sync.Members.URL == "" {
		c.Sync.Members.URL = os.Getenv(EnvMembersURL)
	}
}

// Missing lists the required configuration values that are still
// absent, by the environment variable that should provide them.
func (c *AppConfig) Missing() []string {
	var missing []string
	if c.Sync.Secret == "" {
		missing = append(missing, EnvSecret)
	}
	if c.Sync.Orders.URL == "" {
		missing = append(missing, EnvOrdersURL)
	}
	if c.Sync.Members.URL == "" {
		missing = append(missing, EnvMembersURL)
	}
	return missing
}

func (c *AppConfig) applyDefaults() {
	def := Default()
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Sync.Orders.Interval == 0 {
		c.Sync.Orders.Interval = def.Sync.Orders.Interval
	}
	if c.Sync.Members.Interval == 0 {
		c.Sync.Members.Interval = def.Sync.Members.Interval
	}
	if c.Sync.FailureThreshold == 0 {
		c.Sync.FailureThreshold = def.Sync.FailureThreshold
	}
	if c.Sync.Retry.MaxAttempts == 0 {
		c.Sync.Retry.MaxAttempts = def.Sync.Retry.MaxAttempts
	}
	if c.Sync.Retry.RequestTimeout == 0 {
		c.Sync.Retry.RequestTimeout = def.Sync.Retry.RequestTimeout
	}
	if c.Sync.Retry.InitialBackoff == 0 {
		c.Sync.Retry.InitialBackoff = def.Sync.Retry.InitialBackoff
	}
	if c.Sync.Retry.BackoffMultiplier == 0 {
		c.Sync.Retry.BackoffMultiplier = def.Sync.Retry.BackoffMultiplier
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_SYNC_SECRET", "super-secret")
	defer os.Unsetenv("TEST_SYNC_SECRET")

	path := writeConfig(t, `
sync:
  secret: ${TEST_SYNC_SECRET}
  orders:
    url: https://api.example.com/orders/sync
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sync.Secret != "super-secret" {
		t.Errorf("expected secret super-secret, got %s", cfg.Sync.Secret)
	}
	if cfg.Sync.Orders.URL != "https://api.example.com/orders/sync" {
		t.Errorf("unexpected orders URL: %s", cfg.Sync.Orders.URL)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sync.Orders.Interval != 10*time.Minute {
		t.Errorf("expected default orders interval 10m, got %v", cfg.Sync.Orders.Interval)
	}
	if cfg.Sync.Members.Interval != 5*time.Minute {
		t.Errorf("expected default members interval 5m, got %v", cfg.Sync.Members.Interval)
	}
	if cfg.Sync.FailureThreshold != 5 {
		t.Errorf("expected default failure threshold 5, got %d", cfg.Sync.FailureThreshold)
	}
	if cfg.Sync.Retry.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Sync.Retry.MaxAttempts)
	}
	if cfg.Sync.Retry.RequestTimeout != 30*time.Second {
		t.Errorf("expected default request timeout 30s, got %v", cfg.Sync.Retry.RequestTimeout)
	}
}

func TestApplyEnv_FillsRequiredValues(t *testing.T) {
	os.Setenv(EnvSecret, "env-secret")
	os.Setenv(EnvOrdersURL, "https://api.example.com/orders")
	os.Setenv(EnvMembersURL, "https://api.example.com/members")
	defer func() {
		os.Unsetenv(EnvSecret)
		os.Unsetenv(EnvOrdersURL)
		os.Unsetenv(EnvMembersURL)
	}()

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Sync.Secret != "env-secret" {
		t.Errorf("expected env secret, got %s", cfg.Sync.Secret)
	}
	if missing := cfg.Missing(); len(missing) != 0 {
		t.Errorf("expected nothing missing, got %v", missing)
	}
}

func TestApplyEnv_FileWinsOverEnv(t *testing.T) {
	os.Setenv(EnvOrdersURL, "https://env.example.com/orders")
	defer os.Unsetenv(EnvOrdersURL)

	cfg := Default()
	cfg.Sync.Orders.URL = "https://file.example.com/orders"
	cfg.ApplyEnv()

	if cfg.Sync.Orders.URL != "https://file.example.com/orders" {
		t.Errorf("expected file value to win, got %s", cfg.Sync.Orders.URL)
	}
}

func TestMissing_ReportsEachAbsentValue(t *testing.T) {
	cfg := Default()

	missing := cfg.Missing()
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing values, got %v", missing)
	}

	want := []string{EnvSecret, EnvOrdersURL, EnvMembersURL}
	for i, name := range want {
		if missing[i] != name {
			t.Errorf("missing[%d] = %s, want %s", i, missing[i], name)
		}
	}

	cfg.Sync.Secret = "s"
	cfg.Sync.Orders.URL = "https://api.example.com/orders"
	cfg.Sync.Members.URL = "https://api.example.com/members"
	if missing := cfg.Missing(); len(missing) != 0 {
		t.Errorf("expected nothing missing, got %v", missing)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	return path
}

func TestLoadConfigFillsDefaultsForZeroFields(t *testing.T) {
	path := writeConfigFile(t, `
symbol: "SOLUSDC"
redis:
  host: "cache.internal"
`)

	cfg, err := NewConfigLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Redis.Host != "cache.internal" {
		t.Errorf("Redis.Host = %q, want preserved value", cfg.Redis.Host)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want default 6379", cfg.Redis.Port)
	}
	if cfg.Strategy.MinConfidenceToEnter != 60 {
		t.Errorf("Strategy.MinConfidenceToEnter = %v, want default 60", cfg.Strategy.MinConfidenceToEnter)
	}
	if cfg.Throttle.MaxTradesPerHour != 3 {
		t.Errorf("Throttle.MaxTradesPerHour = %d, want default 3", cfg.Throttle.MaxTradesPerHour)
	}
	if cfg.Cost.FeePercent != 0.3 {
		t.Errorf("Cost.FeePercent = %v, want default 0.3", cfg.Cost.FeePercent)
	}
}

func TestLoadConfigDefaultsEmptySymbol(t *testing.T) {
	path := writeConfigFile(t, `redis:
  host: "localhost"
`)

	cfg, err := NewConfigLoader().LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Symbol != "SOLUSDC" {
		t.Errorf("Symbol = %q, want default SOLUSDC", cfg.Symbol)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := NewConfigLoader().LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestGetRedisAddress(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Host: "redis.local", Port: 6380}}
	if got := cfg.GetRedisAddress(); got != "redis.local:6380" {
		t.Errorf("GetRedisAddress() = %q, want %q", got, "redis.local:6380")
	}
}

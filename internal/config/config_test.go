package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
api:
  url: https://api.litelist.example
store:
  backend: redis
redis:
  endpoint: redis.internal:6379
session:
  renewperiod: 30s
`)
	t.Setenv("LITELIST_REDIS_DB", "3")
	t.Setenv("LITELIST_API_URL", "https://override.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.URL != "https://override.example" {
		t.Errorf("API.URL = %q, want env override", cfg.API.URL)
	}
	if cfg.Store.Backend != BackendRedis {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Redis.Endpoint != "redis.internal:6379" || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Session.RenewPeriod != 30*time.Second {
		t.Errorf("RenewPeriod = %s, want 30s", cfg.Session.RenewPeriod)
	}
	if cfg.Session.RenewalMargin != 100*time.Second {
		t.Errorf("RenewalMargin = %s, want default 100s", cfg.Session.RenewalMargin)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("API.Timeout = %s, want default kept", cfg.API.Timeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LITELIST_STORE_BACKEND", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing api url", func(c *Config) { c.API.URL = " " }, "api.url"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }, "unknown store.backend"},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"dynamodb without table", func(c *Config) {
			c.Store.Backend = BackendDynamoDB
			c.DynamoDB.TableName = ""
		}, "dynamodb.tablename"},
		{"short seal secret", func(c *Config) { c.Store.SealSecret = "short" }, "sealsecret"},
		{"zero renew period", func(c *Config) { c.Session.RenewPeriod = 0 }, "renewperiod"},
		{"margins inverted", func(c *Config) {
			c.Session.RecoveryMargin = 2 * time.Minute
		}, "must exceed"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

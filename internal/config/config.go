package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

// EnvPrefix prefixes every environment override, e.g. LITELIST_API_URL.
const EnvPrefix = "LITELIST_"

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

const minSealSecretLength = 16

type Config struct {
	API      APIConfig      `koanf:"api"`
	Store    StoreConfig    `koanf:"store"`
	Redis    RedisConfig    `koanf:"redis"`
	DynamoDB DynamoDBConfig `koanf:"dynamodb"`
	Session  SessionConfig  `koanf:"session"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Log      LogConfig      `koanf:"log"`
}

type APIConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type StoreConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
	// SealSecret enables encryption of stored values when non-empty.
	SealSecret string `koanf:"sealsecret"`
}

type RedisConfig struct {
	Endpoint string `koanf:"endpoint"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

type DynamoDBConfig struct {
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	TableName string `koanf:"tablename"`
	Namespace string `koanf:"namespace"`
}

type SessionConfig struct {
	RenewPeriod    time.Duration `koanf:"renewperiod"`
	RecoveryMargin time.Duration `koanf:"recoverymargin"`
	RenewalMargin  time.Duration `koanf:"renewalmargin"`
}

type GatewayConfig struct {
	Addr          string        `koanf:"addr"`
	ReadTimeout   time.Duration `koanf:"readtimeout"`
	WriteTimeout  time.Duration `koanf:"writetimeout"`
	AllowedOrigin string        `koanf:"allowedorigin"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Dir is the per-user directory holding the config file and local store.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".litelist"
	}
	return filepath.Join(homeDir, ".litelist")
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "default"
	}

	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8080",
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(Dir(), "credentials.db"),
		},
		Redis: RedisConfig{
			Endpoint: "localhost:6379",
			Prefix:   "litelist",
		},
		DynamoDB: DynamoDBConfig{
			Region:    "us-east-1",
			TableName: "LiteListCredentials",
			Namespace: hostname,
		},
		Session: SessionConfig{
			RenewPeriod:    60 * time.Second,
			RecoveryMargin: 60 * time.Second,
			RenewalMargin:  100 * time.Second,
		},
		Gateway: GatewayConfig{
			Addr:          "127.0.0.1:8090",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			AllowedOrigin: "*",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (DefaultPath when empty; a missing file is skipped), then LITELIST_*
// environment variables.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.URL) == "" {
		return fmt.Errorf("api.url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}

	switch c.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Redis.Endpoint == "" {
			return fmt.Errorf("redis.endpoint is required for the redis backend")
		}
	case BackendDynamoDB:
		if c.DynamoDB.TableName == "" || c.DynamoDB.Namespace == "" {
			return fmt.Errorf("dynamodb.tablename and dynamodb.namespace are required for the dynamodb backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	if c.Store.SealSecret != "" && len(c.Store.SealSecret) < minSealSecretLength {
		return fmt.Errorf("store.sealsecret must be at least %d bytes", minSealSecretLength)
	}

	if c.Session.RenewPeriod <= 0 {
		return fmt.Errorf("session.renewperiod must be positive")
	}
	if c.Session.RecoveryMargin <= 0 || c.Session.RenewalMargin <= 0 {
		return fmt.Errorf("session margins must be positive")
	}
	if c.Session.RenewalMargin <= c.Session.RecoveryMargin {
		return fmt.Errorf("session.renewalmargin (%s) must exceed session.recoverymargin (%s)",
			c.Session.RenewalMargin, c.Session.RecoveryMargin)
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

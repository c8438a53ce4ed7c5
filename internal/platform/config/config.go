// Package config resolves runtime settings from defaults, <data>/config.yaml,
// and BABYLOG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	fileName = "config.yaml"

	DriverSQLite = "sqlite"
	DriverLibSQL = "libsql"
)

type Config struct {
	DataDir      string          `yaml:"-"`
	BabyID       string          `yaml:"baby_id"`
	TickInterval time.Duration   `yaml:"tick_interval"`
	Storage      StorageConfig   `yaml:"storage"`
	Log          LogConfig       `yaml:"log"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"`
	DSN       string `yaml:"dsn"`
	AuthToken string `yaml:"auth_token"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" writes <data>/babylog.log, "text" writes stderr
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Default returns the settings used when no file or environment override exists.
func Default(dataDir string) Config {
	return Config{
		DataDir:      dataDir,
		BabyID:       "default",
		TickInterval: time.Second,
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    filepath.Join(dataDir, "babylog.db"),
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	cfg := Default(dataDir)
	if err := cfg.readFile(filepath.Join(dataDir, fileName)); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverLibSQL:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("storage dsn is required")
	}
	if strings.TrimSpace(c.BabyID) == "" {
		return fmt.Errorf("baby id is required")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("BABYLOG_BABY_ID", &c.BabyID)
	str("BABYLOG_STORAGE_DRIVER", &c.Storage.Driver)
	str("BABYLOG_STORAGE_DSN", &c.Storage.DSN)
	str("BABYLOG_STORAGE_AUTH_TOKEN", &c.Storage.AuthToken)
	str("BABYLOG_LOG_LEVEL", &c.Log.Level)
	str("BABYLOG_LOG_FORMAT", &c.Log.Format)
	str("BABYLOG_OTEL_ENDPOINT", &c.Telemetry.Endpoint)

	for key, dst := range map[string]*bool{
		"BABYLOG_OTEL_ENABLED":  &c.Telemetry.Enabled,
		"BABYLOG_OTEL_INSECURE": &c.Telemetry.Insecure,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = parsed
	}
	if v, ok := lookup("BABYLOG_TICK_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BABYLOG_TICK_INTERVAL: %w", err)
		}
		c.TickInterval = d
	}
	return nil
}

// Write persists the file-backed part of cfg to <data>/config.yaml.
func Write(cfg Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.DataDir, fileName), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

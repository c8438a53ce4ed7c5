package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewUsesDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != filepath.Join(dir, "babylog.db") {
		t.Fatalf("unexpected dsn %q", cfg.Storage.DSN)
	}
	if cfg.TickInterval != time.Second {
		t.Fatalf("expected 1s tick, got %s", cfg.TickInterval)
	}
}

func TestNewRejectsEmptyDataDir(t *testing.T) {
	t.Parallel()
	if _, err := New(" "); err == nil {
		t.Fatalf("expected empty data dir to fail")
	}
}

func TestFileValuesOverrideDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "baby_id: ada\ntick_interval: 2s\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.BabyID != "ada" || cfg.TickInterval != 2*time.Second || cfg.Log.Level != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("unset keys should keep defaults, got %q", cfg.Log.Format)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Parallel()
	cfg := Default(t.TempDir())
	cfg.BabyID = "from-file"
	env := map[string]string{
		"BABYLOG_BABY_ID":       "from-env",
		"BABYLOG_OTEL_ENABLED":  "true",
		"BABYLOG_OTEL_ENDPOINT": "localhost:4317",
		"BABYLOG_TICK_INTERVAL": "500ms",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.BabyID != "from-env" || !cfg.Telemetry.Enabled || cfg.TickInterval != 500*time.Millisecond {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEnvRejectsMalformedBool(t *testing.T) {
	t.Parallel()
	cfg := Default(t.TempDir())
	lookup := func(key string) (string, bool) {
		if key == "BABYLOG_OTEL_INSECURE" {
			return "sometimes", true
		}
		return "", false
	}
	if err := cfg.applyEnv(lookup); err == nil {
		t.Fatalf("expected malformed bool to fail")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := Default(t.TempDir())
	badDriver := base
	badDriver.Storage.Driver = "postgres"
	if err := badDriver.Validate(); err == nil {
		t.Fatalf("unsupported driver should fail")
	}
	noEndpoint := base
	noEndpoint.Telemetry.Enabled = true
	if err := noEndpoint.Validate(); err == nil {
		t.Fatalf("telemetry without endpoint should fail")
	}
	noBaby := base
	noBaby.BabyID = ""
	if err := noBaby.Validate(); err == nil {
		t.Fatalf("missing baby id should fail")
	}
}

func TestWriteRoundTripsThroughNew(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.BabyID = "noor"
	if err := Write(cfg); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if loaded.BabyID != "noor" {
		t.Fatalf("expected persisted baby id, got %q", loaded.BabyID)
	}
}

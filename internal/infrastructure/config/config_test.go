package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/atmledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.SourceKind != config.SourceKindFile {
		t.Fatalf("expected default source kind file, got %s", cfg.SourceKind)
	}

	if cfg.DataExt != ".dat" {
		t.Fatalf("expected default extension .dat, got %s", cfg.DataExt)
	}

	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no kafka brokers by default, got %v", cfg.KafkaBrokers)
	}

	if cfg.GenSeed != 102030 || cfg.GenSources != 10 || cfg.GenAccounts != 20 || cfg.GenTransactions != 250000 {
		t.Fatalf("unexpected generator defaults: %+v", cfg)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SOURCE_KIND", "redis")
	t.Setenv("DATA_DIR", "/tmp/atm")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.SourceKind != config.SourceKindRedis {
		t.Fatalf("expected redis source kind, got %s", cfg.SourceKind)
	}

	if cfg.DataDir != "/tmp/atm" {
		t.Fatalf("expected custom data dir, got %s", cfg.DataDir)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("expected two kafka brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadUnknownSourceKind(t *testing.T) {
	t.Setenv("SOURCE_KIND", "ftp")

	_, err := config.Load()
	if !errors.Is(err, config.ErrUnknownSourceKind) {
		t.Fatalf("expected ErrUnknownSourceKind, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DATA_EXT=.txt\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	t.Chdir(dir)

	// godotenv never overrides variables that are already set.
	os.Unsetenv("DATA_EXT")
	t.Cleanup(func() { os.Unsetenv("DATA_EXT") })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DataExt != ".txt" {
		t.Fatalf("expected DATA_EXT from .env, got %s", cfg.DataExt)
	}
}

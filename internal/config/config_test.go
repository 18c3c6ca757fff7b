package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalConfig = "project: test\nversion: 1\nassets:\n  paths: [./Exports]\noutput:\n  csv_dir: ./out\n"

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Assets.CacheSize != 64 {
			t.Fatalf("expected cache size 64, got %d", cfg.Assets.CacheSize)
		}
		if len(cfg.Assets.Exclude) != 1 || cfg.Assets.Exclude[0] != "Audio/**" {
			t.Fatalf("unexpected exclude patterns: %v", cfg.Assets.Exclude)
		}
		if cfg.Neo4j.Database != "neo4j" {
			t.Fatalf("expected default neo4j database, got %q", cfg.Neo4j.Database)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg, err := LoadProjectConfig(writeTempConfig(t, minimalConfig))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Workers != DefaultWorkers {
			t.Fatalf("expected %d workers, got %d", DefaultWorkers, cfg.Workers)
		}
		if cfg.Log.Mode != "dev" {
			t.Fatalf("expected dev log mode, got %q", cfg.Log.Mode)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("SOULMINER_OUTPUT_DSN", "postgres://miner@localhost/mined")
		cfg, err := LoadProjectConfig(writeTempConfig(t, minimalConfig))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Output.DSN != "postgres://miner@localhost/mined" {
			t.Fatalf("expected dsn from environment, got %q", cfg.Output.DSN)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nassets:\n  paths: [./Exports]\noutput:\n  csv_dir: ./out\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\nassets:\n  paths: [./Exports]\noutput:\n  csv_dir: ./out\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("no asset paths", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\noutput:\n  csv_dir: ./out\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported dsn scheme", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nassets:\n  paths: [./Exports]\noutput:\n  dsn: mysql://localhost/db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("no output", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nassets:\n  paths: [./Exports]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("zero workers", func(t *testing.T) {
		path := writeTempConfig(t, minimalConfig+"workers: 0\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "soulminer.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: courtline
  environment: test
  port: 8080
database:
  driver: sqlite
  filename: test.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Play.DefaultMaxCourts != 4 {
		t.Errorf("default max courts = %d, want 4", cfg.Play.DefaultMaxCourts)
	}
	if cfg.Play.SessionIdleHours != 72 {
		t.Errorf("session idle hours = %d, want 72", cfg.Play.SessionIdleHours)
	}
	if cfg.Play.SweepCron == "" {
		t.Error("sweep cron default missing")
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	path := writeConfig(t, `
app:
  name: courtline
database:
  driver: sqlite
  filename: test.db
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Fatalf("expected port validation error, got %v", err)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
app:
  name: courtline
  port: 8080
database:
  driver: postgres
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Fatalf("expected driver validation error, got %v", err)
	}
}

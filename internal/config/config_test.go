package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, but got %s", cfg.Server.Port)
	}
	if cfg.Admin.Email != "admin@twix.com" {
		t.Errorf("Expected default admin email, but got %s", cfg.Admin.Email)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("Expected memory backend, but got %s", cfg.Session.Backend)
	}
	if cfg.Session.IdleTimeout().Minutes() != 60 {
		t.Errorf("Expected 60m idle timeout, but got %v", cfg.Session.IdleTimeout())
	}
	if len(cfg.Prizes) != 0 {
		t.Errorf("Expected no configured prizes, but got %d", len(cfg.Prizes))
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9090"
session:
  backend: sqlite
  dsn: test.db
prizes:
  - id: p1
    name: Big Prize
    category: sticker
    weight: 5
    stock: 3
locations:
  - id: x1
    name: Test Mall
    country: UAE
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ADMIN_EMAIL", "ops@example.com")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, but got %s", cfg.Server.Port)
	}
	if cfg.Session.Backend != "sqlite" || cfg.Session.DSN != "test.db" {
		t.Errorf("Unexpected session config: %+v", cfg.Session)
	}
	if cfg.Admin.Email != "ops@example.com" {
		t.Errorf("Expected env override for admin email, but got %s", cfg.Admin.Email)
	}
	if len(cfg.Prizes) != 1 || cfg.Prizes[0].RemainingStock != 3 || cfg.Prizes[0].Weight != 5 {
		t.Errorf("Unexpected prizes: %+v", cfg.Prizes)
	}
	if len(cfg.Locations) != 1 || cfg.Locations[0].Name != "Test Mall" {
		t.Errorf("Unexpected locations: %+v", cfg.Locations)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "redis")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Expected an error for an unknown session backend, but got nil")
	}
}

func TestLoad_RejectsZeroSweepInterval(t *testing.T) {
	t.Setenv("SESSION_SWEEPINTERVALMINUTES", "0")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Expected an error for a zero sweep interval, but got nil")
	}
}

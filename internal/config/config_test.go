package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SPLITBOOK_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/splitbook.db" {
		t.Errorf("db path = %q", cfg.Database.Path)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("token ttl = %v, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.AMQP.URL != "" {
		t.Errorf("amqp url = %q, want empty (disabled)", cfg.AMQP.URL)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SPLITBOOK_AUTH_JWT_SECRET", "")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() without jwt secret should fail")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("SPLITBOOK_AUTH_JWT_SECRET", "test-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9999\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SPLITBOOK_AUTH_JWT_SECRET", "test-secret")
	t.Setenv("SPLITBOOK_SERVER_PORT", "7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want 7777 from env", cfg.Server.Port)
	}
}

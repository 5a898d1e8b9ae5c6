package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != Default().Server.Address {
		t.Fatalf("expected default address, got %+v", cfg)
	}
}

func TestLoadParsesYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  address: \":9090\"\ninfrastructure:\n  asyncMessagingEnabled: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected overridden address, got %s", cfg.Server.Address)
	}
	if !cfg.Infrastructure.AsyncMessagingEnabled {
		t.Fatalf("expected asyncMessagingEnabled true")
	}
	if cfg.Messaging.InfrastructureTaskEventsTopic == "" {
		t.Fatalf("expected default messaging topic to survive merge")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  address: \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty server address")
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  address: \":8080\"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan Config, 1)
	if err := Watch(ctx, path, func(cfg Config) { changed <- cfg }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(path, []byte("server:\n  address: \":9091\"\n"), 0o644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Server.Address != ":9091" {
			t.Fatalf("expected updated address, got %s", cfg.Server.Address)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected config reload notification")
	}
}

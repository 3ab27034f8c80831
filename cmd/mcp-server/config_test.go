package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("", 9090)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("want :9090, got %s", cfg.Addr)
	}
	if cfg.ReadTimeoutSeconds != 15 || cfg.IdleTimeoutSeconds != 60 {
		t.Errorf("unexpected default timeouts: %+v", cfg)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	data := "addr: \":7070\"\nread_timeout_seconds: 30\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path, 8080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("want :7070, got %s", cfg.Addr)
	}
	if cfg.ReadTimeoutSeconds != 30 {
		t.Errorf("want 30, got %d", cfg.ReadTimeoutSeconds)
	}
	// Fields absent from the file keep their defaults.
	if cfg.WriteTimeoutSeconds != 15 {
		t.Errorf("want 15, got %d", cfg.WriteTimeoutSeconds)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path, 8080); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadConfig("/nonexistent/server.yaml", 8080); err == nil {
		t.Error("expected error for missing file")
	}
}

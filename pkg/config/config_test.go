package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1anyK1/realTime/internal/bytesize"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Network != "unix" {
		t.Errorf("Expected default network 'unix', got %q", cfg.Server.Network)
	}
	if cfg.Server.Address != DefaultSocketPath {
		t.Errorf("Expected default address %q, got %q", DefaultSocketPath, cfg.Server.Address)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Expected default shutdown_timeout %v, got %v", DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	}
	if cfg.Device.Capacity != 256 {
		t.Errorf("Expected default capacity 256, got %d", cfg.Device.Capacity)
	}
	if cfg.Device.ChunkSize != 1024 {
		t.Errorf("Expected default chunk size 1024, got %d", cfg.Device.ChunkSize)
	}
	if cfg.API.Enabled {
		t.Error("Expected API to be disabled by default")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected defaults without a config file, got: %v", err)
	}
	if cfg.Device.Capacity != 256 {
		t.Errorf("Expected default capacity 256, got %d", cfg.Device.Capacity)
	}
}

func TestLoad_ByteSizeAndDurations(t *testing.T) {
	path := writeConfig(t, `
server:
  address: "/tmp/other.sock"
  max_connections: 4
  shutdown_timeout: 2s
device:
  capacity: 4Ki
  chunk_size: 512
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Device.Capacity != 4*bytesize.KiB {
		t.Errorf("Expected capacity 4Ki, got %d", cfg.Device.Capacity)
	}
	if cfg.Device.ChunkSize != 512 {
		t.Errorf("Expected chunk size 512, got %d", cfg.Device.ChunkSize)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Expected shutdown timeout 2s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.MaxConnections != 4 {
		t.Errorf("Expected max connections 4, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.Address != "/tmp/other.sock" {
		t.Errorf("Expected address override, got %q", cfg.Server.Address)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: INFO
`)
	t.Setenv("RESMGR_LOGGING_LEVEL", "WARN")
	t.Setenv("RESMGR_DEVICE_CAPACITY", "1Ki")
	t.Setenv("RESMGR_SERVER_ADDRESS", "/tmp/env.sock")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected env level WARN, got %q", cfg.Logging.Level)
	}
	if cfg.Device.Capacity != bytesize.KiB {
		t.Errorf("Expected env capacity 1Ki, got %d", cfg.Device.Capacity)
	}
	if cfg.Server.Address != "/tmp/env.sock" {
		t.Errorf("Expected env address, got %q", cfg.Server.Address)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "logging: [unterminated\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestLoad_InvalidByteSize(t *testing.T) {
	path := writeConfig(t, `
device:
  capacity: lots
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for invalid capacity")
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := MustLoad(missing)
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "resmgr init") {
		t.Errorf("Expected hint to run 'resmgr init', got: %v", err)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Device.Capacity = 2 * bytesize.KiB
	cfg.Server.ShutdownTimeout = 7 * time.Second
	cfg.Logging.Format = "json"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Device.Capacity != cfg.Device.Capacity {
		t.Errorf("Capacity mismatch: got %d, want %d", loaded.Device.Capacity, cfg.Device.Capacity)
	}
	if loaded.Server.ShutdownTimeout != cfg.Server.ShutdownTimeout {
		t.Errorf("Shutdown timeout mismatch: got %v, want %v", loaded.Server.ShutdownTimeout, cfg.Server.ShutdownTimeout)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("Format mismatch: got %q", loaded.Logging.Format)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got := GetConfigDir(); got != filepath.Join(dir, "resmgr") {
		t.Errorf("Expected config dir under XDG_CONFIG_HOME, got %q", got)
	}
	if got := GetDefaultConfigPath(); got != filepath.Join(dir, "resmgr", "config.yaml") {
		t.Errorf("Unexpected default config path %q", got)
	}
	if DefaultConfigExists() {
		t.Error("Expected no default config in an empty directory")
	}
}

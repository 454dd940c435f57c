package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitConfig_Success(t *testing.T) {
	// XDG_CONFIG_HOME keeps getConfigDir() inside the temp directory.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	for _, section := range []string{
		"# Resource Manager Configuration File",
		"logging:",
		"server:",
		"device:",
		"api:",
	} {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		t.Fatalf("Generated config is not valid YAML: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.Device.Capacity != 256 {
		t.Errorf("Expected capacity 256 in generated config, got %d", cfg.Device.Capacity)
	}
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}
	if _, err := InitConfig(false); err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if _, err := InitConfig(true); err != nil {
		t.Fatalf("Forced InitConfig failed: %v", err)
	}
}

func TestInitConfigToPath_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.yaml")

	if err := InitConfigToPath(path, false); err != nil {
		t.Fatalf("InitConfigToPath failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file at %s: %v", path, err)
	}
}

func TestWriteInitialConfig_CustomValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Device.Capacity = 4096
	cfg.Server.Address = "/tmp/custom.sock"

	if err := WriteInitialConfig(cfg, path, false); err != nil {
		t.Fatalf("WriteInitialConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Device.Capacity != 4096 {
		t.Errorf("Expected capacity 4096, got %d", loaded.Device.Capacity)
	}
	if loaded.Server.Address != "/tmp/custom.sock" {
		t.Errorf("Expected custom address, got %q", loaded.Server.Address)
	}
}

func TestWriteInitialConfig_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Device.ChunkSize = 0

	if err := WriteInitialConfig(cfg, path, false); err == nil {
		t.Fatal("Expected validation error for zero chunk size")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Invalid config must not be written")
	}
}

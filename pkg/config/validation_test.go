package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidNetwork(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Network = "udp"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unsupported network")
	}
}

func TestValidate_NegativeMaxConnections(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.MaxConnections = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for negative max_connections")
	}
}

func TestValidate_ZeroCapacity(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Device.Capacity = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for zero capacity")
	}
	if !strings.Contains(err.Error(), "Capacity") {
		t.Errorf("Expected error to name Capacity, got: %v", err)
	}
}

func TestValidate_OversizedCapacity(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Device.Capacity = 1 << 40

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for capacity beyond int32")
	}
}

func TestValidate_InvalidSampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.SampleRate = 1.5

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for sample_rate > 1")
	}
}

func TestValidate_InvalidAPIPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Port = 70000

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for API port out of range")
	}
}

func TestValidate_MetricsRequireAPI(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for metrics without API")
	}

	cfg.API.Enabled = true
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected metrics with API to validate, got: %v", err)
	}
}

package config

import (
	"strings"
	"time"

	"github.com/1anyK1/realTime/internal/bytesize"
	"github.com/1anyK1/realTime/pkg/device"
	"github.com/1anyK1/realTime/pkg/protocol"
)

// DefaultSocketPath is the well-known endpoint clients connect to.
const DefaultSocketPath = "/tmp/example_resmgr.sock"

// DefaultShutdownTimeout bounds how long in-flight connections may run
// after a shutdown signal.
const DefaultShutdownTimeout = 5 * time.Second

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyServerDefaults(&cfg.Server)
	applyDeviceDefaults(&cfg.Device)
	cfg.API.ApplyDefaults()
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Default endpoint is the standard OTLP gRPC port
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"inuse_space",
			"goroutines",
			"mutex_duration",
		}
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Network == "" {
		cfg.Network = "unix"
	}
	if cfg.Address == "" {
		cfg.Address = DefaultSocketPath
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func applyDeviceDefaults(cfg *DeviceConfig) {
	if cfg.Capacity == 0 {
		cfg.Capacity = bytesize.ByteSize(device.DefaultCapacity)
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = bytesize.ByteSize(protocol.DefaultChunkSize)
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

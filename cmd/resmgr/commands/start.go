package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/internal/logger"
	"github.com/1anyK1/realTime/internal/telemetry"
	"github.com/1anyK1/realTime/pkg/adapter"
	"github.com/1anyK1/realTime/pkg/adapter/resmgr"
	"github.com/1anyK1/realTime/pkg/api"
	"github.com/1anyK1/realTime/pkg/config"
	"github.com/1anyK1/realTime/pkg/device"
)

var (
	foreground bool
	verbose    bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the resmgr server",
	Long: `Start the resmgr server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/resmgr/config.yaml. Without any file the
built-in defaults are used.

Examples:
  # Start in background (default)
  resmgr start

  # Start in foreground with debug logging
  resmgr start --foreground --verbose

  # Start with custom config file
  resmgr start --config /etc/resmgr/config.yaml

  # Start with environment variable overrides
  RESMGR_DEVICE_CAPACITY=4KiB resmgr start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (overrides logging.level)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/resmgr/resmgr.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/resmgr/resmgr.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "DEBUG"
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    appName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    appName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if cfg.Telemetry.Profiling.Enabled {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	}

	metricsResult := config.InitializeMetrics(cfg)
	if metricsResult.Recorder != nil {
		logger.Info("Metrics enabled", "path", "/metrics")
	} else {
		logger.Info("Metrics collection disabled")
	}

	dev, err := device.NewWithPattern(cfg.Device.Capacity.Int())
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	srv := resmgr.New(resmgr.Config{
		BaseConfig: adapter.BaseConfig{
			Network:            cfg.Server.Network,
			Address:            cfg.Server.Address,
			MaxConnections:     cfg.Server.MaxConnections,
			ShutdownTimeout:    cfg.Server.ShutdownTimeout,
			MetricsLogInterval: cfg.Server.MetricsLogInterval,
		},
		ChunkSize: cfg.Device.ChunkSize.Int(),
	}, dev, metricsResult.Recorder)

	var apiDone chan error
	if cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, api.Deps{
			Server:    srv,
			Device:    dev,
			ChunkSize: srv.ChunkSize(),
			Metrics:   metricsResult.Handler,
		})
		apiDone = make(chan error, 1)
		go func() {
			apiDone <- apiServer.Start(ctx)
		}()
		logger.Info("API server enabled", "address", cfg.API.BindAddress, "port", cfg.API.Port)
	} else {
		logger.Info("API server disabled")
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error", logger.Err(err))
			return err
		}
		logger.Info("Server stopped")

	case err := <-apiDone:
		cancel()
		<-serverDone
		if err != nil {
			logger.Error("API server error", logger.Err(err))
			return fmt.Errorf("api server: %w", err)
		}
	}

	return nil
}

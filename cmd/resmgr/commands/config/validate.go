package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the resmgr configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  resmgr config validate

  # Validate specific config file
  resmgr config validate --config /etc/resmgr/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", path)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Endpoint:        %s:%s\n", cfg.Server.Network, cfg.Server.Address)
	_, _ = fmt.Fprintf(out, "  Capacity:        %s\n", cfg.Device.Capacity)
	_, _ = fmt.Fprintf(out, "  Chunk size:      %s\n", cfg.Device.ChunkSize)
	_, _ = fmt.Fprintf(out, "  API enabled:     %t\n", cfg.API.Enabled)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}

// configWarnings reports settings that are valid but probably unintended.
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	if cfg.Server.Network == "unix" && !filepath.IsAbs(cfg.Server.Address) {
		warnings = append(warnings, fmt.Sprintf("socket path %q is relative to the server's working directory", cfg.Server.Address))
	}
	if cfg.API.Enabled && cfg.API.BindAddress != "127.0.0.1" && cfg.API.BindAddress != "::1" {
		warnings = append(warnings, fmt.Sprintf("API server listens on %s, not only on loopback", cfg.API.BindAddress))
	}
	if cfg.Server.MaxConnections == 0 {
		warnings = append(warnings, "max_connections is 0, connection count is unlimited")
	}
	return warnings
}

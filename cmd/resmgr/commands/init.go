package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1anyK1/realTime/internal/cli/prompt"
	"github.com/1anyK1/realTime/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample resmgr configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/resmgr/config.yaml.
Use --config to specify a custom path and --interactive to be asked for the
main settings instead of writing the defaults.

Examples:
  # Initialize with default location
  resmgr init

  # Initialize with custom path
  resmgr init --config /etc/resmgr/config.yaml

  # Answer a few questions first
  resmgr init --interactive

  # Force overwrite existing config
  resmgr init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.GetDefaultConfig()
	force := initForce

	if initInteractive {
		if !force && fileExists(configPath) {
			ok, err := prompt.Confirm(fmt.Sprintf("%s exists. Overwrite", configPath), false)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
			force = true
		}
		if err := promptConfig(cfg); err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
	}

	if err := config.WriteInitialConfig(cfg, configPath, force); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: resmgr start")
	fmt.Printf("  3. Or specify custom config: resmgr start --config %s\n", configPath)
	return nil
}

func promptConfig(cfg *config.Config) error {
	network, err := prompt.Select("Listener network", []prompt.SelectOption{
		{Label: "unix", Value: "unix", Description: "Local stream socket at a filesystem path"},
		{Label: "tcp", Value: "tcp", Description: "TCP host:port"},
	}, cfg.Server.Network)
	if err != nil {
		return err
	}
	cfg.Server.Network = network

	defaultAddr := cfg.Server.Address
	if network == "tcp" {
		defaultAddr = "127.0.0.1:9000"
	}
	if cfg.Server.Address, err = prompt.Input("Listen address", defaultAddr); err != nil {
		return err
	}

	if cfg.Device.Capacity, err = prompt.InputByteSize("Device capacity", cfg.Device.Capacity); err != nil {
		return err
	}
	if cfg.Device.ChunkSize, err = prompt.InputByteSize("Chunk size", cfg.Device.ChunkSize); err != nil {
		return err
	}
	if cfg.Server.MaxConnections, err = prompt.InputInt("Max connections (0 = unlimited)", cfg.Server.MaxConnections); err != nil {
		return err
	}

	if cfg.API.Enabled, err = prompt.Confirm("Enable the HTTP API", cfg.API.Enabled); err != nil {
		return err
	}
	if cfg.API.Enabled {
		if cfg.API.Port, err = prompt.InputPort("API port", cfg.API.Port); err != nil {
			return err
		}
		if cfg.Metrics.Enabled, err = prompt.Confirm("Expose Prometheus metrics on /metrics", true); err != nil {
			return err
		}
	}
	return nil
}

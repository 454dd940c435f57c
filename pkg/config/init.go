package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const configHeader = `# Resource Manager Configuration File
#
# Values can be overridden with RESMGR_* environment variables, e.g.
#   RESMGR_LOGGING_LEVEL=DEBUG
#   RESMGR_DEVICE_CAPACITY=4Ki
#
# Sizes accept plain byte counts or units: 256, 4Ki, 1MB.

`

// InitConfig writes a sample configuration file to the default location.
// An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration file to path.
func InitConfigToPath(path string, force bool) error {
	return WriteInitialConfig(GetDefaultConfig(), path, force)
}

// WriteInitialConfig validates cfg and writes it to path below the sample
// header. An existing file is only replaced when force is set.
func WriteInitialConfig(cfg *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return writeConfigFile(path, append([]byte(configHeader), body...))
}

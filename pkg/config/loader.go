package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ProjectConfigPath is the project-local configuration file, relative to the
// current directory
const ProjectConfigPath = ".makerun/config.yaml"

// UserConfigPath returns the per-user configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/makerun/config.yaml or ~/.config/makerun/config.yaml
//	macOS:   ~/Library/Application Support/makerun/config.yaml
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "makerun", "config.yaml")
}

// Load reads and parses a configuration file. Fields missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}

// Discover loads the configuration from explicitPath when set. Otherwise it
// tries the project config, then the user config, then falls back to
// defaults. The returned path is empty when defaults are used.
func Discover(explicitPath string) (*Config, string, error) {
	candidates := []string{ProjectConfigPath, UserConfigPath()}
	if explicitPath != "" {
		candidates = []string{explicitPath}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if explicitPath == "" && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to stat config file %s: %w", path, err)
		}

		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		if err := Validate(cfg); err != nil {
			return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
		}
		return cfg, path, nil
	}

	return Default(), "", nil
}

// Save writes cfg as YAML, creating parent directories as needed
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value; a weights table in the file replaces the default one.
// Durations are written as Go duration strings ("2s", "1m30s").
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	defaults := cfg.Weights
	cfg.Weights = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Weights) == 0 {
		cfg.Weights = defaults
	}

	return cfg, nil
}

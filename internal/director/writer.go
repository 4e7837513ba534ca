package director

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteTrace writes a trace to a YAML file, creating its directory
func WriteTrace(trace *Trace, path string) error {
	data, err := yaml.Marshal(trace)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create trace dir: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// ReadTrace reads a trace from a YAML file
func ReadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var trace Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", path, err)
	}

	return &trace, nil
}

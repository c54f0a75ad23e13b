package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory and next to the executable when no path is given
const FileName = "pointcloud.yaml"

// Load returns the defaults overridden by the configuration file. An explicit path must exist;
// without one the standard locations are tried and a missing file is not an error.
func Load(path string, searchDirs ...string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile(searchDirs)
	}
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "loading config from %s", path)
	}
	return cfg, nil
}

// findConfigFile looks for FileName in the working directory, then in searchDirs
func findConfigFile(searchDirs []string) string {
	candidates := []string{FileName}
	for _, dir := range searchDirs {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFromFile merges a YAML file into cfg
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

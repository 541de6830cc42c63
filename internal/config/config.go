// Package config loads the optional YAML run configuration shared by the
// CLI and the server. DSNs and secrets stay in the environment; the file
// carries scrub-policy overrides and tuning only.
package config

import (
	"fmt"
	"os"

	"github.com/iscp-sec/guardian/internal/engine"
	"gopkg.in/yaml.v3"
)

// Config is the YAML run configuration.
type Config struct {
	// Workers is the scrub worker-pool size for batch runs. 0 means one
	// worker per CPU is chosen by the caller.
	Workers int `yaml:"workers"`
	// Scrub partially overrides the engine defaults.
	Scrub engine.Overrides `yaml:"scrub"`
}

// Load reads configuration from a YAML file. An empty path or a missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{}
}

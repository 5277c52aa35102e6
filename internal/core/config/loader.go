package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	var cfg AppConfig
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Target.URL == "" {
		cfg.Target.URL = "http://localhost:8000"
	}
	if cfg.Target.Scheme == "" {
		cfg.Target.Scheme = "http"
	}
	if cfg.Target.HealthPath == "" {
		cfg.Target.HealthPath = "/health"
	}
	if cfg.Target.ProbeTimeout == 0 {
		cfg.Target.ProbeTimeout = 5 * time.Second
	}
	if cfg.Monitor.Interval == 0 {
		cfg.Monitor.Interval = 30 * time.Second
	}
	if cfg.Monitor.FailureThreshold == 0 {
		cfg.Monitor.FailureThreshold = 3
	}
	if cfg.Monitor.BackoffBase == 0 {
		cfg.Monitor.BackoffBase = 5 * time.Second
	}
	if cfg.Monitor.BackoffMax == 0 {
		cfg.Monitor.BackoffMax = 60 * time.Second
	}
	// The gateway talks to the same service the monitor watches unless
	// pointed elsewhere.
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = cfg.Target.URL
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

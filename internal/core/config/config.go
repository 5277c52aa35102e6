package config

import (
	"time"

	"github.com/vietddude/apiwatch/internal/infra/gateway"
	redisclient "github.com/vietddude/apiwatch/internal/infra/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig       `yaml:"server"`
	Target  TargetConfig       `yaml:"target"`
	Monitor MonitorConfig      `yaml:"monitor"`
	Gateway gateway.Config     `yaml:"gateway"`
	Redis   redisclient.Config `yaml:"redis"`
	Logging LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// TargetConfig points at the prediction service being watched.
type TargetConfig struct {
	URL          string        `yaml:"url"`
	Scheme       string        `yaml:"scheme"` // http, grpc
	HealthPath   string        `yaml:"health_path"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	GRPCService  string        `yaml:"grpc_service"`
}

// MonitorConfig tunes the health check loop.
type MonitorConfig struct {
	Interval         time.Duration `yaml:"interval"`
	FailureThreshold int           `yaml:"failure_threshold"`
	BackoffBase      time.Duration `yaml:"backoff_base"`
	BackoffMax       time.Duration `yaml:"backoff_max"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

package app

import (
	"fmt"

	"github.com/vk/fixturegrid/internal/harness"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are HCL files or directories. Missing paths are skipped.
	ConfigPaths []string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	// Workers overrides settings.workers when positive.
	Workers int
	Report  string

	Run  harness.RegexList
	Skip harness.RegexList

	// Suite replaces the built-in example suites when set.
	Suite harness.Suite
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Report == "" {
		cfg.Report = harness.ReportText
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.Report != harness.ReportText && cfg.Report != harness.ReportYAML {
		return nil, fmt.Errorf("invalid report %q: must be 'text' or 'yaml'", cfg.Report)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AJaySi/ALwrity-sub003/internal/apiclient"
	"github.com/AJaySi/ALwrity-sub003/internal/server"
	"github.com/AJaySi/ALwrity-sub003/internal/telemetry"
)

// Config holds all application configuration.
type Config struct {
	LogLevel  string           `yaml:"log_level"`
	Server    server.Config    `yaml:"server"`
	API       apiclient.Config `yaml:"api"`
	Collector telemetry.Config `yaml:"collector"`
}

// DefaultConfig returns the default configuration for the entire service.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		Server:    server.DefaultConfig(),
		API:       apiclient.DefaultConfig(),
		Collector: telemetry.DefaultConfig(),
	}
}

// Load reads configuration from an optional YAML file layered over the
// defaults, then applies environment overrides. An empty path skips the
// file step.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays the environment variables used in deployment.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCHEDULER_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("BUCKET_TIMEZONE"); v != "" {
		c.Collector.BucketTimezone = v
	}
}

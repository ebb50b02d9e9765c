// Package config handles reading and writing .nexus/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .nexus/config.yaml.
// Environment variables (NEXUS_*) override file values.
type Config struct {
	Version  int          `yaml:"version" env:"-"`
	Server   ServerConfig `yaml:"server"`
	Tenant   TenantConfig `yaml:"tenant"`
	DemoMode bool         `yaml:"demo_mode" env:"NEXUS_DEMO_MODE"`
	LogLevel string       `yaml:"log_level" env:"NEXUS_LOG_LEVEL"`
}

// ServerConfig holds the backend connection settings.
type ServerConfig struct {
	BaseURL        string `yaml:"base_url" env:"NEXUS_SERVER_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"NEXUS_TIMEOUT_SECONDS"`
}

// TenantConfig identifies the tenant whose chat widget this client drives.
type TenantConfig struct {
	ID string `yaml:"id" env:"NEXUS_TENANT_ID"`
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// MemoryKey returns the per-tenant chat transcript storage key.
func (c *Config) MemoryKey() string {
	return "chat_memory_" + c.Tenant.ID
}

const configDir = ".nexus"
const configFile = "config.yaml"

// ReadConfig reads .nexus/config.yaml from the given directory and applies
// NEXUS_* environment overrides. dir is the working root (not .nexus/ itself).
// A missing file is not an error: defaults plus environment are returned.
func ReadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, configDir, configFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .nexus/config.yaml in the given directory.
// Creates the .nexus/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Tenant: TenantConfig{
			ID: "demo_tenant",
		},
		DemoMode: false,
		LogLevel: "info",
	}
}

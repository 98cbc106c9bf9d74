// Package config loads the board configuration from moday.yml, with
// environment variable overrides for deployment and an optional .env file
// for local development.
package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level moday.yml configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Tenant string       `yaml:"tenant"` // Workspace identifier scoping the realtime channel
}

// ServerConfig locates the order backend (the system of record).
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// RedisConfig locates the realtime channel transport.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// Default values applied when neither file nor environment provides one.
const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultRedisAddr = "localhost:6379"
	DefaultTenant    = "default"
)

// Load reads the configuration from path, applies environment overrides and
// validates the result. A missing file is not an error: defaults plus
// environment are used, so the CLI runs without any configuration at all.
//
// Environment overrides: MODAY_SERVER_URL, MODAY_REDIS_ADDR, MODAY_TENANT.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{BaseURL: DefaultBaseURL},
		Redis:  RedisConfig{Addr: DefaultRedisAddr},
		Tenant: DefaultTenant,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to defaults + environment
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MODAY_SERVER_URL"); v != "" {
		config.Server.BaseURL = v
	}
	if v := os.Getenv("MODAY_REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("MODAY_TENANT"); v != "" {
		config.Tenant = v
	}
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %w", err)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}

	if c.Tenant == "" {
		return fmt.Errorf("tenant is required")
	}

	return nil
}

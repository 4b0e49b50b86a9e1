// Package config loads deployment configuration from a YAML file with
// environment variable overrides for the values that differ per environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	DatabaseURL string `yaml:"database_url"`
	EventBus    string `yaml:"event_bus"`

	API struct {
		Port int `yaml:"port"`
	} `yaml:"api"`

	HTTP struct {
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedHosts   []string `yaml:"allowed_hosts"`
		AllowLoopback  bool     `yaml:"allow_loopback"`
	} `yaml:"http"`

	AI struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"-"`
	} `yaml:"ai"`

	Engine struct {
		MaxDepth           int `yaml:"max_depth"`
		MaxWhileIterations int `yaml:"max_while_iterations"`
		MaxDelaySeconds    int `yaml:"max_delay_seconds"`
	} `yaml:"engine"`

	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`

	Schedules []Schedule `yaml:"schedules"`
}

// Schedule publishes a SCHEDULED domain event for one tenant on a cron spec.
type Schedule struct {
	TenantID string         `yaml:"tenant_id"`
	Cron     string         `yaml:"cron"`
	Payload  map[string]any `yaml:"payload"`
}

// Load reads the config file at path (skipped when path is empty or the file
// does not exist) and applies environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	cfg.DatabaseURL = "file://./data"
	cfg.EventBus = "gochannel"
	cfg.API.Port = 8080

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			err = yaml.Unmarshal(raw, cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("EVENT_BUS"); v != "" {
		cfg.EventBus = v
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
}

// HTTPTimeout returns the configured outbound HTTP timeout, zero when unset.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// MaxDelay returns the configured delay node cap, zero when unset.
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.Engine.MaxDelaySeconds) * time.Second
}

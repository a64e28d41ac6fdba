package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// API Keys
	OpenRouterKey string `yaml:"openrouter_key"`

	// Model Configuration
	DefaultModel string  `yaml:"default_model"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`

	// Provider Configuration
	BaseURL string `yaml:"base_url"`

	// Storage Configuration
	Storage StorageConfig `yaml:"storage"`

	// Search Configuration
	SearchURL string `yaml:"search_url"`

	// Chat Configuration
	Chat ChatConfig `yaml:"chat"`
}

// StorageConfig selects and configures the session persistence backend
type StorageConfig struct {
	// Backend is "file" or "redis"
	Backend string `yaml:"backend"`
	// Path is the sessions file for the file backend
	Path string `yaml:"path"`
	// Redis connection settings for the redis backend
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

// ChatConfig holds conversation behavior settings
type ChatConfig struct {
	// Fallback serves canned answers when the backend fails
	Fallback bool `yaml:"fallback"`
	// Simulate answers locally without a backend call
	Simulate bool `yaml:"simulate"`
}

// LoadConfig loads configuration from a YAML file. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "google/gemini-2.0-flash-001"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}

	// Load secrets and overrides from environment if not in config
	if cfg.OpenRouterKey == "" {
		cfg.OpenRouterKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENROUTER_BASE_URL")
	}
	if v := os.Getenv("CHATCORE_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("CHATCORE_REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("CHATCORE_FALLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Chat.Fallback = b
		}
	}

	return &cfg, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model is required")
	}

	switch c.Storage.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.Backend == "redis" && c.Storage.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required for the redis backend")
	}

	return nil
}

// Package config handles engine configuration loaded from gofetch.yml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for configuration when no --config
// flag is given.
const DefaultPath = "gofetch.yml"

// Config is the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// APIConfig configures the bibliographic graph API client.
type APIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Key            string  `yaml:"key"`
	RateLimit      float64 `yaml:"rate_limit"`      // requests per second
	TimeoutSeconds int     `yaml:"timeout_seconds"` // per-request timeout
}

// EngineConfig holds the snowball builder tunables.
type EngineConfig struct {
	ResolveBatchSize int `yaml:"resolve_batch_size"`
	ExpandBatchSize  int `yaml:"expand_batch_size"`
	TopN             int `yaml:"top_n"`
}

// StorageConfig configures run persistence.
type StorageConfig struct {
	Path string `yaml:"path"` // SQLite database file
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			RateLimit:      1.0,
			TimeoutSeconds: 15,
		},
		Engine: EngineConfig{
			ResolveBatchSize: 5,
			ExpandBatchSize:  3,
			TopN:             50,
		},
		Storage: StorageConfig{Path: "gofetch.db"},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Load reads configuration from path, applying defaults for unset
// fields and the SEMANTIC_SCHOLAR_API_KEY environment override. A
// missing file yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file: defaults plus env.
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if key := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); key != "" {
		cfg.API.Key = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.RateLimit <= 0 {
		return fmt.Errorf("api.rate_limit must be positive, got %v", c.API.RateLimit)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.Engine.ResolveBatchSize <= 0 || c.Engine.ExpandBatchSize <= 0 {
		return fmt.Errorf("engine batch sizes must be positive")
	}
	if c.Engine.TopN <= 0 {
		return fmt.Errorf("engine.top_n must be positive, got %d", c.Engine.TopN)
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

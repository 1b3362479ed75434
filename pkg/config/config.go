// Package config loads the service configuration from YAML with environment
// overrides for secrets. API keys never live in the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Models struct {
		Gemini         string `yaml:"gemini"`
		Claude         string `yaml:"claude"`
		ThinkingBudget int32  `yaml:"thinking_budget"`
	} `yaml:"models"`

	Pipeline struct {
		RatioPrecision          int     `yaml:"ratio_precision"`
		SupplementalWaitSeconds int     `yaml:"supplemental_wait_seconds"`
		EnableSearch            bool    `yaml:"enable_search"`
		ExtractionMode          string  `yaml:"extraction_mode"` // inline or upload
		SynthesisVariant        string  `yaml:"synthesis_variant"`
		Tolerance               float64 `yaml:"tolerance"`
	} `yaml:"pipeline"`

	Download struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		MaxRetries     int `yaml:"max_retries"`
	} `yaml:"download"`

	Minio struct {
		Enabled   bool   `yaml:"enabled"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"accessKey"`
		SecretKey string `yaml:"secretKey"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"useSSL"`
		Public    bool   `yaml:"public"`
	} `yaml:"minio"`

	Registry struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"registry"`

	Resources string `yaml:"resources"` // prompt override directory

	// Secrets, environment only.
	GeminiAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
}

// Load reads path, applies defaults and pulls secrets from the environment.
// A missing file is not an error: everything has a default.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = os.Getenv("CLAUDE_API_KEY")
	}

	// Secret overrides for the blob store.
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Minio.SecretKey = v
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Models.Gemini == "" {
		c.Models.Gemini = "gemini-2.5-flash"
	}
	if c.Models.Claude == "" {
		c.Models.Claude = "claude-sonnet-4-20250514"
	}
	if c.Models.ThinkingBudget == 0 {
		c.Models.ThinkingBudget = 8000
	}
	if c.Pipeline.RatioPrecision == 0 {
		c.Pipeline.RatioPrecision = 2
	}
	if c.Pipeline.SupplementalWaitSeconds == 0 {
		c.Pipeline.SupplementalWaitSeconds = 95
	}
	if c.Pipeline.ExtractionMode == "" {
		c.Pipeline.ExtractionMode = "inline"
	}
	if c.Pipeline.SynthesisVariant == "" {
		c.Pipeline.SynthesisVariant = "solvency_fr"
	}
	if c.Download.TimeoutSeconds == 0 {
		c.Download.TimeoutSeconds = 120
	}
	if c.Download.MaxRetries == 0 {
		c.Download.MaxRetries = 3
	}
	if c.Resources == "" {
		c.Resources = "resources"
	}
}

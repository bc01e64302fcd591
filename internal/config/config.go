// Package config loads service configuration from defaults, an optional YAML
// file, and SENTIMENT_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration. It is built once at startup and
// passed explicitly into constructors.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OllamaConfig holds the inference backend settings.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// Timeout bounds a single generate call. A misbehaving or unloaded model
	// must not block callers indefinitely.
	Timeout Duration `yaml:"timeout"`
	// ProbeTimeout bounds the health probe's tags call.
	ProbeTimeout Duration `yaml:"probe_timeout"`
}

// RateLimitConfig bounds the rate of analyze requests admitted to the model.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file or environment
// overrides are present. Values mirror a stock local Ollama setup.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Ollama: OllamaConfig{
			BaseURL:      "http://localhost:11434",
			Model:        "mistral",
			Timeout:      Duration(30 * time.Second),
			ProbeTimeout: Duration(5 * time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply. A missing file at a non-empty
// path is an error; an unreadable or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("SENTIMENT_SERVER_HOST", c.Server.Host)
	if v := os.Getenv("SENTIMENT_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SENTIMENT_SERVER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	c.Ollama.BaseURL = getEnv("SENTIMENT_OLLAMA_URL", c.Ollama.BaseURL)
	c.Ollama.Model = getEnv("SENTIMENT_OLLAMA_MODEL", c.Ollama.Model)
	if v := os.Getenv("SENTIMENT_OLLAMA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SENTIMENT_OLLAMA_TIMEOUT %q: %w", v, err)
		}
		c.Ollama.Timeout = Duration(d)
	}
	if v := os.Getenv("SENTIMENT_OLLAMA_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SENTIMENT_OLLAMA_PROBE_TIMEOUT %q: %w", v, err)
		}
		c.Ollama.ProbeTimeout = Duration(d)
	}

	c.Log.Level = getEnv("SENTIMENT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SENTIMENT_LOG_FORMAT", c.Log.Format)

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

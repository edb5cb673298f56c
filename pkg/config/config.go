// Package config loads calculator settings from a YAML or TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the driver and server settings.
type Config struct {
	Prompt        string       `yaml:"prompt" toml:"prompt"`
	Color         string       `yaml:"color" toml:"color"`
	Banner        bool         `yaml:"banner" toml:"banner"`
	MaxLineLength int          `yaml:"maxLineLength" toml:"max_line_length"`
	LogLevel      string       `yaml:"logLevel" toml:"log_level"`
	Server        ServerConfig `yaml:"server" toml:"server"`
}

// ServerConfig holds the settings of `calc serve`.
type ServerConfig struct {
	Host         string `yaml:"host" toml:"host"`
	Port         int    `yaml:"port" toml:"port"`
	GRPCPort     int    `yaml:"grpcPort" toml:"grpc_port"`
	HistoryLimit int    `yaml:"historyLimit" toml:"history_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prompt:        "> ",
		Color:         ColorAuto,
		Banner:        true,
		MaxLineLength: 1024,
		LogLevel:      "warn",
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8787,
			GRPCPort:     8788,
			HistoryLimit: 1000,
		},
	}
}

// Load reads the file at path over the defaults. The format is chosen by
// extension: .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from CALC_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Prompt = envOrDefault("CALC_PROMPT", c.Prompt)
	c.Color = envOrDefault("CALC_COLOR", c.Color)
	c.LogLevel = envOrDefault("CALC_LOG_LEVEL", c.LogLevel)
	c.Server.Host = envOrDefault("CALC_HOST", c.Server.Host)

	ints := []struct {
		key string
		dst *int
	}{
		{"CALC_MAX_LINE_LENGTH", &c.MaxLineLength},
		{"CALC_PORT", &c.Server.Port},
		{"CALC_GRPC_PORT", &c.Server.GRPCPort},
		{"CALC_HISTORY_LIMIT", &c.Server.HistoryLimit},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", e.key, v)
		}
		*e.dst = n
	}

	if v := os.Getenv("CALC_BANNER"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CALC_BANNER: invalid boolean %q", v)
		}
		c.Banner = b
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never (got %q)", c.Color)
	}
	if c.MaxLineLength <= 0 {
		return fmt.Errorf("maxLineLength must be positive (got %d)", c.MaxLineLength)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("server gRPC port out of range: %d", c.Server.GRPCPort)
	}
	if c.Server.HistoryLimit < 0 {
		return fmt.Errorf("historyLimit must not be negative (got %d)", c.Server.HistoryLimit)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

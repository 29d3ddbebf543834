// Package config loads server settings from defaults, an optional YAML file,
// and TRUESIGNAL_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Stream StreamConfig `mapstructure:"stream"`
	Client ClientConfig `mapstructure:"client"`
}

// ServerConfig shapes the HTTP listener.
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DataConfig locates the persistence directory.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// StreamConfig tunes the chat stream producer.
type StreamConfig struct {
	MinDelay        time.Duration `mapstructure:"min_delay"`
	MaxDelay        time.Duration `mapstructure:"max_delay"`
	ExecutionPause  time.Duration `mapstructure:"execution_pause"`
	ExecutionChance float64       `mapstructure:"execution_chance"`
}

// ClientConfig tunes the API client side: where it points and how it
// retries.
type ClientConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryBase  time.Duration `mapstructure:"retry_base"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// Addr renders the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration. path may be empty; a missing file is only an
// error when the caller named one explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("data.dir", "./data")
	v.SetDefault("stream.min_delay", "30ms")
	v.SetDefault("stream.max_delay", "70ms")
	v.SetDefault("stream.execution_pause", "500ms")
	v.SetDefault("stream.execution_chance", 0.5)
	v.SetDefault("client.base_url", "http://localhost:3001")
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.retry_base", "100ms")
	v.SetDefault("client.max_retries", 3)

	v.SetEnvPrefix("TRUESIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("truesignal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Stream.MinDelay < 0 || c.Stream.MaxDelay < c.Stream.MinDelay {
		return fmt.Errorf("stream delay window [%s, %s] is invalid", c.Stream.MinDelay, c.Stream.MaxDelay)
	}
	if c.Stream.ExecutionChance < 0 || c.Stream.ExecutionChance > 1 {
		return fmt.Errorf("stream.execution_chance %v must be within [0, 1]", c.Stream.ExecutionChance)
	}
	return nil
}

// Package config loads gateway settings with the precedence
// defaults < config file < CHATGATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Admission AdmissionConfig `mapstructure:"admission"`
	History   HistoryConfig   `mapstructure:"history"`
	Media     MediaConfig     `mapstructure:"media"`
	Limits    LimitsConfig    `mapstructure:"limits"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig selects the shared counting store. With Addr empty the
// gateway falls back to the in-process store, which only enforces the
// caps within a single server process.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
	Key  string `mapstructure:"key"`
}

type AdmissionConfig struct {
	MaxConnections          int64 `mapstructure:"max_connections"`
	MaxConnectionsPerClient int64 `mapstructure:"max_connections_per_client"`
}

type HistoryConfig struct {
	// Path of the sqlite transcript database; empty keeps transcripts in
	// memory only.
	Path string `mapstructure:"path"`
}

type MediaConfig struct {
	// SampleDir holds sample.txt/sample.mp3/sample.jpg overrides for the
	// canned reply payloads.
	SampleDir string `mapstructure:"sample_dir"`
	// StorageDir is where media referenced from transcripts is written.
	StorageDir string `mapstructure:"storage_dir"`
}

type LimitsConfig struct {
	// MaxFrameBytes caps inbound websocket frames.
	MaxFrameBytes int64 `mapstructure:"max_frame_bytes"`
	// MaxFieldBytes caps each reply payload field.
	MaxFieldBytes int `mapstructure:"max_field_bytes"`
}

// Load reads the configuration. file may be empty; a missing explicit
// file is an error, letting a typoed --config fail loudly.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "chatgate:connections")
	v.SetDefault("admission.max_connections", 1000)
	v.SetDefault("admission.max_connections_per_client", 1)
	v.SetDefault("history.path", "./chatgate.db")
	v.SetDefault("media.sample_dir", "")
	v.SetDefault("media.storage_dir", "./media")
	v.SetDefault("limits.max_frame_bytes", 100<<20)
	v.SetDefault("limits.max_field_bytes", 1<<20)

	v.SetEnvPrefix("CHATGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot serve.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}
	if c.Server.WriteTimeout <= 0 {
		return errors.New("server write timeout must be positive")
	}
	if c.Admission.MaxConnections <= 0 {
		return errors.New("max_connections must be positive")
	}
	if c.Admission.MaxConnectionsPerClient <= 0 {
		return errors.New("max_connections_per_client must be positive")
	}
	if c.Limits.MaxFrameBytes <= 0 {
		return errors.New("max_frame_bytes must be positive")
	}
	if c.Limits.MaxFieldBytes <= 0 {
		return errors.New("max_field_bytes must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

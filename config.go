package mango

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client and server settings.
type Config struct {
	// Address of the remote store server.
	Address string
	// Database is the default database name.
	Database string
	// Timeout is applied to operations whose context has no deadline.
	// Zero disables the default timeout.
	Timeout time.Duration
	// LogLevel is one of debug, info, warn, or error.
	LogLevel string
	// MaxConnections bounds the number of connections a server handles
	// concurrently.
	MaxConnections int
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Address:        "localhost:4207",
		Database:       "test",
		Timeout:        30 * time.Second,
		LogLevel:       "info",
		MaxConnections: 128,
	}
}

// LoadConfig reads settings from a YAML file, filling unset fields with
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// UnmarshalYAML decodes the config, parsing the timeout as a duration
// string such as "30s".
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Address        string `yaml:"address"`
		Database       string `yaml:"database"`
		Timeout        string `yaml:"timeout"`
		LogLevel       string `yaml:"log_level"`
		MaxConnections int    `yaml:"max_connections"`
	}
	err := value.Decode(&aux)
	if err != nil {
		return err
	}
	if aux.Address != "" {
		c.Address = aux.Address
	}
	if aux.Database != "" {
		c.Database = aux.Database
	}
	if aux.Timeout != "" {
		timeout, err := time.ParseDuration(aux.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		c.Timeout = timeout
	}
	if aux.LogLevel != "" {
		c.LogLevel = aux.LogLevel
	}
	if aux.MaxConnections != 0 {
		c.MaxConnections = aux.MaxConnections
	}
	return nil
}

// SlogLevel returns the slog level for the configured log level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

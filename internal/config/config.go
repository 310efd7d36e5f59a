package config

import (
	"time"

	"github.com/mikanbox/relay/internal/logging"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig   `json:"server" yaml:"server"`
	Relay   RelayConfig    `json:"relay" yaml:"relay"`
	Auth    AuthConfig     `json:"auth" yaml:"auth"`
	Store   StoreConfig    `json:"store" yaml:"store"`
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string   `json:"host" yaml:"host"`
	Port         int      `json:"port" yaml:"port"`
	ReadTimeout  Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// RelayConfig represents relay core configuration
type RelayConfig struct {
	// SendTimeout bounds delivery of a single outbound event to one target.
	SendTimeout Duration `json:"send_timeout" yaml:"send_timeout"`

	// SendBuffer is the per-connection outbound queue size.
	SendBuffer int `json:"send_buffer" yaml:"send_buffer"`

	MaxMessageSize int64    `json:"max_message_size" yaml:"max_message_size"`
	PingInterval   Duration `json:"ping_interval" yaml:"ping_interval"`
	ReadTimeout    Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   Duration `json:"write_timeout" yaml:"write_timeout"`
}

// AuthConfig represents token authentication configuration
type AuthConfig struct {
	// Enabled gates token verification at connection-accept time. The relay
	// core itself never authenticates.
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Secret  string   `json:"secret" yaml:"secret"`
	TTL     Duration `json:"ttl" yaml:"ttl"`
}

// StoreConfig represents the optional document store configuration
type StoreConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	URI      string `json:"uri" yaml:"uri"`
	Database string `json:"database" yaml:"database"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         3000,
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
			IdleTimeout:  Duration(120 * time.Second),
		},
		Relay: RelayConfig{
			SendTimeout:    Duration(5 * time.Second),
			SendBuffer:     256,
			MaxMessageSize: 512 * 1024,
			PingInterval:   Duration(30 * time.Second),
			ReadTimeout:    Duration(60 * time.Second),
			WriteTimeout:   Duration(10 * time.Second),
		},
		Auth: AuthConfig{
			Enabled: false,
			TTL:     Duration(2 * time.Hour),
		},
		Store: StoreConfig{
			Enabled:  false,
			URI:      "mongodb://localhost:27017",
			Database: "relay",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewConfigError("server.port", "invalid port number")
	}

	if c.Server.ReadTimeout < 0 {
		return NewConfigError("server.read_timeout", "timeout cannot be negative")
	}

	if c.Server.WriteTimeout < 0 {
		return NewConfigError("server.write_timeout", "timeout cannot be negative")
	}

	if c.Relay.SendTimeout <= 0 {
		return NewConfigError("relay.send_timeout", "timeout must be positive")
	}

	if c.Relay.SendBuffer <= 0 {
		return NewConfigError("relay.send_buffer", "buffer size must be positive")
	}

	if c.Relay.MaxMessageSize <= 0 {
		return NewConfigError("relay.max_message_size", "size must be positive")
	}

	if c.Auth.Enabled && c.Auth.Secret == "" {
		return NewConfigError("auth.secret", "secret is required when auth is enabled")
	}

	if c.Store.Enabled && c.Store.URI == "" {
		return NewConfigError("store.uri", "uri is required when store is enabled")
	}

	if c.Store.Enabled && c.Store.Database == "" {
		return NewConfigError("store.database", "database is required when store is enabled")
	}

	// The account store mounts the login endpoint, which signs tokens with
	// the auth secret whether or not token verification is enabled.
	if c.Store.Enabled && c.Auth.Secret == "" {
		return NewConfigError("auth.secret", "secret is required when the account store is enabled")
	}

	return nil
}

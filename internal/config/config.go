// Package config defines the YAML configuration consumed by the vktoken CLI
// and the library defaults shared by every authorization flow.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRequestTimeoutSeconds bounds every network round trip of a flow.
const DefaultRequestTimeoutSeconds = 30

// Config is the root configuration for the vktoken CLI and SDK.
type Config struct {
	// AuthDir is the directory where token files are persisted.
	AuthDir string `yaml:"auth-dir" json:"auth-dir"`

	// ProxyURL routes all flow traffic through a proxy (socks5://, http://, https://).
	ProxyURL string `yaml:"proxy-url" json:"proxy-url"`

	// RequestTimeout is the per-request deadline in seconds. Zero means the default.
	RequestTimeout int `yaml:"request-timeout" json:"request-timeout"`

	// BrowserTLS switches the session transport to a browser TLS fingerprint.
	BrowserTLS bool `yaml:"browser-tls" json:"browser-tls"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile redirects logs to rotating files instead of stdout.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// Store selects the token persistence backend.
	Store StoreConfig `yaml:"store" json:"store"`

	// Accounts lists the VK accounts to acquire tokens for.
	Accounts []Account `yaml:"accounts" json:"accounts"`
}

// Account describes one set of VK credentials.
type Account struct {
	// ClientID is the VK application ID used for the implicit grant.
	ClientID int `yaml:"client-id" json:"client-id"`
	// Login is the account login (email or phone number).
	Login string `yaml:"login" json:"login"`
	// Password is the account password.
	Password string `yaml:"password" json:"password"`
	// Phone is the phone number on file, used for security check challenges.
	Phone string `yaml:"phone,omitempty" json:"phone,omitempty"`
	// Scope overrides the default permission set.
	Scope []string `yaml:"scope,omitempty" json:"scope,omitempty"`
}

// StoreConfig selects and configures the token persistence backend.
type StoreConfig struct {
	// Type is one of "file", "redis", "postgres". Empty means "file".
	Type string `yaml:"type" json:"type"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `yaml:"redis-addr,omitempty" json:"redis-addr,omitempty"`
	// RedisPassword authenticates against Redis when set.
	RedisPassword string `yaml:"redis-password,omitempty" json:"redis-password,omitempty"`
	// RedisDB selects the Redis logical database.
	RedisDB int `yaml:"redis-db,omitempty" json:"redis-db,omitempty"`
	// RedisTTLSeconds expires stored tokens after the given number of seconds.
	RedisTTLSeconds int `yaml:"redis-ttl-seconds,omitempty" json:"redis-ttl-seconds,omitempty"`
	// PostgresDSN is the connection string for the Postgres backend.
	PostgresDSN string `yaml:"postgres-dsn,omitempty" json:"postgres-dsn,omitempty"`
}

// LoadConfig reads and parses the YAML configuration file at the given path.
func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: read %s failed: %w", configFile, err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s failed: %w", configFile, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with library defaults, for embedders that
// run flows without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeoutSeconds
	}
	if c.AuthDir == "" {
		c.AuthDir = "auths"
	}
	if strings.TrimSpace(c.Store.Type) == "" {
		c.Store.Type = "file"
	}
}

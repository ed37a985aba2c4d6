// Package config handles configuration loading, validation, and persistence
// for the pinger status monitor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "config.json"
	DefaultAPIPort    = 5000
	DefaultGamePort   = 25565
)

// Config is the root configuration structure.
type Config struct {
	mu   sync.RWMutex
	path string

	Targets  []Target `json:"targets"`
	Monitor  Monitor  `json:"monitor"`
	API      API      `json:"api"`
	MQTT     MQTT     `json:"mqtt"`
	History  History  `json:"history"`
	Security Security `json:"security"`
	Logging  Logging  `json:"logging"`
}

// Target is a single game server to monitor.
type Target struct {
	// Name identifies the target in the API, history store, and CLI.
	// Defaults to the address when empty.
	Name string `json:"name"`

	// Address is the host:port of the server's game port.
	Address string `json:"address"`
}

// Monitor holds polling settings.
type Monitor struct {
	PollIntervalSec   int `json:"poll_interval_sec"`
	ConnectTimeoutSec int `json:"connect_timeout_sec"`
}

// API holds REST API settings.
type API struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// MQTT holds MQTT telemetry settings.
type MQTT struct {
	Enabled   bool   `json:"enabled"`
	BrokerURL string `json:"broker_url"`
	Port      int    `json:"port"`
	UseTLS    bool   `json:"use_tls"`
	CertFile  string `json:"cert_file"`
	KeyFile   string `json:"key_file"`
	ClientID  string `json:"client_id"`
}

// History holds ping history storage settings.
type History struct {
	Enabled       bool   `json:"enabled"`
	DatabasePath  string `json:"database_path"`
	RetentionDays int    `json:"retention_days"`
}

// Security holds API security settings.
type Security struct {
	AuthToken      string   `json:"auth_token"`
	AllowedOrigins []string `json:"allowed_origins"`
	RateLimitRPS   int      `json:"rate_limit_rps"`
}

// Logging holds logging configuration.
type Logging struct {
	Level      string `json:"level"`
	Directory  string `json:"directory"`
	MaxBackups int    `json:"max_backups"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Targets: []Target{
			{Name: "local", Address: fmt.Sprintf("127.0.0.1:%d", DefaultGamePort)},
		},
		Monitor: Monitor{
			PollIntervalSec:   30,
			ConnectTimeoutSec: 5,
		},
		API: API{
			Enabled: true,
			Port:    DefaultAPIPort,
		},
		MQTT: MQTT{
			Enabled: false,
			Port:    8883,
			UseTLS:  true,
		},
		History: History{
			Enabled:       true,
			DatabasePath:  filepath.Join(DefaultConfigDir, "history.db"),
			RetentionDays: 7,
		},
		Security: Security{
			RateLimitRPS: 100,
		},
		Logging: Logging{
			Level:      "info",
			Directory:  "logs",
			MaxBackups: 5,
		},
	}
}

// Load reads configuration from a JSON file, creating a default file when
// none exists.
func Load(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, DefaultConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configPath).Msg("config file not found, creating default")
			cfg := DefaultConfig()
			cfg.path = configPath
			if saveErr := cfg.Save(); saveErr != nil {
				return nil, fmt.Errorf("failed to save default config: %w", saveErr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig() // Start with defaults, then overlay
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	cfg.path = configPath
	log.Info().Str("path", configPath).Int("targets", len(cfg.Targets)).Msg("configuration loaded")

	return cfg, nil
}

// Save writes the current configuration to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", c.path).Msg("configuration saved")
	return nil
}

// GetTargets returns a copy of the monitored target list.
func (c *Config) GetTargets() []Target {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets := make([]Target, len(c.Targets))
	copy(targets, c.Targets)
	return targets
}

// AddTarget appends a target to the monitored list. Duplicate addresses
// are rejected.
func (c *Config) AddTarget(target Target) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if target.Name == "" {
		target.Name = target.Address
	}
	for _, t := range c.Targets {
		if t.Address == target.Address {
			return fmt.Errorf("target %s already configured", target.Address)
		}
	}
	c.Targets = append(c.Targets, target)
	return nil
}

// RemoveTarget removes a target by name or address. It reports whether a
// target was removed.
func (c *Config) RemoveTarget(nameOrAddress string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.Targets {
		if t.Name == nameOrAddress || t.Address == nameOrAddress {
			c.Targets = append(c.Targets[:i], c.Targets[i+1:]...)
			return true
		}
	}
	return false
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

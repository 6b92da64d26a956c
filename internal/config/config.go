// Package config provides configuration management for lantern.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lantern-wallet/lantern/internal/fileutil"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Network  string         `yaml:"network"`
	Chain    ChainConfig    `yaml:"chain"`
	Nodes    NodesConfig    `yaml:"nodes"`
	Sync     SyncConfig     `yaml:"sync"`
	Security SecurityConfig `yaml:"security"`
	Relay    RelayConfig    `yaml:"relay"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ChainConfig holds the chain constants used for restore-height estimation.
type ChainConfig struct {
	// BlockTimeSeconds is the network's target block time.
	BlockTimeSeconds int64 `yaml:"block_time_seconds"`

	// ReferenceHeight and ReferenceTimestamp anchor time-to-height
	// estimation: the chain was at ReferenceHeight at ReferenceTimestamp.
	ReferenceHeight    uint64 `yaml:"reference_height"`
	ReferenceTimestamp int64  `yaml:"reference_timestamp"`

	// LookbackDays is subtracted from the creation time when estimating a
	// restore height, so deposits received shortly before wallet creation
	// are still detected.
	LookbackDays int `yaml:"lookback_days"`

	// ClampDays bounds how far past the reference point estimation may
	// extrapolate, guarding against drifted reference constants.
	ClampDays int `yaml:"clamp_days"`
}

// NodeConfig describes a built-in remote node endpoint.
type NodeConfig struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	URI   string `yaml:"uri"`
}

// NodesConfig defines remote node settings.
type NodesConfig struct {
	Builtin           []NodeConfig `yaml:"builtin"`
	RequestsPerSecond float64      `yaml:"requests_per_second"`
	Burst             int          `yaml:"burst"`
}

// SyncConfig defines background synchronization settings.
type SyncConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// SecurityConfig defines PIN and unlock policy.
type SecurityConfig struct {
	PinMinDigits   int  `yaml:"pin_min_digits"`
	PinMaxDigits   int  `yaml:"pin_max_digits"`
	UnlockAttempts int  `yaml:"unlock_attempts"`
	MemoryLock     bool `yaml:"memory_lock"`
}

// RelayConfig defines the signing identity and publishing preferences.
type RelayConfig struct {
	// IdentityFile holds the signing/encryption identity keys.
	IdentityFile string `yaml:"identity_file"`

	// ShareAddress controls whether the public receive address is
	// published to the user's profile after unlock.
	ShareAddress bool `yaml:"share_address"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the config file path under home.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the lantern home directory with ~ expanded.
func (c *Config) GetHome() string {
	return ExpandHome(c.Home)
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultHome returns the default lantern home directory.
func DefaultHome() string {
	return "~/.lantern"
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/radio-control/rigcore/internal/rig"
)

// Config is the daemon configuration: which rig to drive, how to reach it,
// and how the HTTP front end behaves. Values merge in three layers:
// built-in defaults, an optional YAML file, then RIGD_* environment
// overrides.
type Config struct {
	Rig    RigConfig    `yaml:"rig"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Audit  AuditConfig  `yaml:"audit"`
}

// RigConfig selects and parameterizes the radio.
type RigConfig struct {
	// Model is the registry identifier to create. Zero means probe the
	// port instead.
	Model int `yaml:"model"`

	// PortPath overrides the descriptor's default port when non-empty.
	PortPath string `yaml:"port_path"`

	// BaudRate overrides the descriptor's default rate when non-zero.
	BaudRate int `yaml:"baud_rate"`

	// Calibration is the frequency correction factor. Zero disables it.
	Calibration float64 `yaml:"calibration"`
}

// ServerConfig shapes the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// AuthConfig controls bearer-token verification. With Enabled false every
// request passes, which is only acceptable on a trusted loopback.
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
}

// AuditConfig controls the JSONL action log.
type AuditConfig struct {
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Defaults returns the built-in baseline configuration.
func Defaults() *Config {
	return &Config{
		Rig: RigConfig{
			Model: 1, // dummy
		},
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Audit: AuditConfig{
			Dir:        "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load merges Defaults() + optional YAML file + RIGD_* env overrides, then
// validates the result. The file path comes from RIGD_CONFIG, falling back
// to rigd.yaml in the working directory; a missing file is not an error.
func Load() (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("RIGD_CONFIG")
	if path == "" {
		path = "rigd.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at path onto cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies RIGD_* environment variables on top of cfg.
// Malformed values are ignored, same as unset ones.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RIGD_RIG_MODEL"); val != "" {
		if model, err := strconv.Atoi(val); err == nil {
			cfg.Rig.Model = model
		}
	}
	if val := os.Getenv("RIGD_RIG_PORT"); val != "" {
		cfg.Rig.PortPath = val
	}
	if val := os.Getenv("RIGD_RIG_BAUD"); val != "" {
		if rate, err := strconv.Atoi(val); err == nil {
			cfg.Rig.BaudRate = rate
		}
	}
	if val := os.Getenv("RIGD_RIG_CALIBRATION"); val != "" {
		if factor, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Rig.Calibration = factor
		}
	}
	if val := os.Getenv("RIGD_ADDR"); val != "" {
		cfg.Server.Addr = val
	}
	if val := os.Getenv("RIGD_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("RIGD_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("RIGD_AUTH_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			cfg.Auth.Enabled = enabled
		}
	}
	if val := os.Getenv("RIGD_AUTH_SECRET"); val != "" {
		cfg.Auth.Secret = val
	}
	if val := os.Getenv("RIGD_AUDIT_DIR"); val != "" {
		cfg.Audit.Dir = val
	}
}

// Validate rejects configurations the daemon cannot run with.
func Validate(cfg *Config) error {
	if cfg.Rig.Model < 0 {
		return fmt.Errorf("rig.model must not be negative, got %d", cfg.Rig.Model)
	}
	if cfg.Rig.Model == 0 && cfg.Rig.PortPath == "" {
		return fmt.Errorf("probing (rig.model 0) requires rig.port_path")
	}
	if cfg.Rig.BaudRate < 0 {
		return fmt.Errorf("rig.baud_rate must not be negative, got %d", cfg.Rig.BaudRate)
	}
	if cfg.Rig.Calibration < 0 {
		return fmt.Errorf("rig.calibration must not be negative, got %f", cfg.Rig.Calibration)
	}
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if cfg.Auth.Enabled && cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.enabled requires auth.secret")
	}
	if cfg.Audit.Dir == "" {
		return fmt.Errorf("audit.dir must not be empty")
	}
	return nil
}

// Model returns the configured model as a registry identifier.
func (c *RigConfig) ModelID() rig.ModelID {
	return rig.ModelID(c.Model)
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/driver"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/logger"
)

// Output modes of the Apache driver.
const (
	ModeFile      = driver.ModeFile
	ModeFragments = driver.ModeFragments
)

// DriverApache is the only supported driver.
const DriverApache = "apache"

// Config represents the declaration file
type Config struct {
	Driver      string   `yaml:"driver" toml:"driver"`
	GroupPolicy string   `yaml:"group_policy,omitempty" toml:"group_policy,omitempty"`
	Mode        string   `yaml:"mode,omitempty" toml:"mode,omitempty"`
	LogLevel    string   `yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	Jobs        int      `yaml:"jobs,omitempty" toml:"jobs,omitempty"`
	Paths       Paths    `yaml:"paths,omitempty" toml:"paths,omitempty"`
	Unit        string   `yaml:"unit,omitempty" toml:"unit,omitempty"`
	VHosts      []*VHost `yaml:"vhosts" toml:"vhosts"`

	path string
}

// Paths overrides the platform-detected Apache directories.
type Paths struct {
	Available string `yaml:"available,omitempty" toml:"available,omitempty"`
	Enabled   string `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

// configDir is the default config directory
const configDir = ".config/vhostfrag"
const configFile = "config.yaml"

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Driver:      DriverApache,
		GroupPolicy: string(constraint.PolicyCombine),
		Mode:        ModeFile,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the default config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config at path, or at ConfigPath when path is empty.
// A missing file yields the default config bound to that path.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("config %s not found, using defaults", path)
		cfg := New()
		cfg.path = path
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, isTOML(path))
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes and validates a config document.
func Parse(data []byte, asTOML bool) (*Config, error) {
	cfg := New()
	if asTOML {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse config", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, "failed to parse config", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the top-level settings. Vhosts and declarations are
// validated during assembly.
func (c *Config) Validate() error {
	if c.Driver != DriverApache {
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("unsupported driver %q (available: %s)", c.Driver, DriverApache), nil)
	}
	if _, err := c.Policy(); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "invalid group_policy", err)
	}
	if c.Mode != ModeFile && c.Mode != ModeFragments {
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("unknown mode %q (valid: %s, %s)", c.Mode, ModeFile, ModeFragments), nil)
	}
	if c.Jobs < 0 {
		return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("jobs must not be negative, got %d", c.Jobs), nil)
	}
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return errors.Wrap(errors.ErrCodeConfig, "invalid log_level", err)
		}
	}
	for i, v := range c.VHosts {
		if v == nil {
			return errors.Wrap(errors.ErrCodeConfig, fmt.Sprintf("vhosts[%d] is empty", i), nil)
		}
	}
	return nil
}

// Policy returns the parsed group policy.
func (c *Config) Policy() (constraint.Policy, error) {
	return constraint.ParsePolicy(c.GroupPolicy)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to its file, in the file's format
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal(isTOML(path))
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	c.path = path
	return nil
}

// Marshal encodes the config as YAML or TOML.
func (c *Config) Marshal(asTOML bool) ([]byte, error) {
	if asTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return buf.Bytes(), nil
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// FindVHost returns the vhost resolving to targetID
func (c *Config) FindVHost(targetID string) (*VHost, error) {
	for _, v := range c.VHosts {
		if v.ID() == targetID {
			return v, nil
		}
	}
	return nil, errors.NotFound(targetID)
}

// RemoveVHost removes the vhost resolving to targetID
func (c *Config) RemoveVHost(targetID string) error {
	for i, v := range c.VHosts {
		if v.ID() == targetID {
			c.VHosts = append(c.VHosts[:i], c.VHosts[i+1:]...)
			return nil
		}
	}
	return errors.NotFound(targetID)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

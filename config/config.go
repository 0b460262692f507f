package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"midiroll/midiparser"
)

// Environment keys that override the file config
const (
	EnvFilter      = "MIDIROLL_FILTER"
	EnvMinVelocity = "MIDIROLL_MIN_VELOCITY"
	EnvMinDuration = "MIDIROLL_MIN_DURATION"
	EnvPalette     = "MIDIROLL_PALETTE"

	// EnvDebug enables the debug log when set to any value
	EnvDebug = "MIDIROLL_DEBUG"
)

var envKeys = []string{EnvFilter, EnvMinVelocity, EnvMinDuration, EnvPalette}

// FilterConfig mirrors the loader's note filter options
type FilterConfig struct {
	Enabled     bool    `json:"enabled"`
	MinVelocity int     `json:"minVelocity"`
	MinDuration float64 `json:"minDurationSeconds"`
}

// UIConfig stores inspector preferences
type UIConfig struct {
	Palette    string  `json:"palette,omitempty"` // path to a GIMP .gpl palette
	TimeWindow float64 `json:"timeWindow,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Filter FilterConfig `json:"filter"`
	UI     UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	opts := midiparser.DefaultOptions()
	return &Config{
		Filter: FilterConfig{
			Enabled:     opts.FilterNotes,
			MinVelocity: opts.MinVelocity,
			MinDuration: opts.MinDuration,
		},
		UI: UIConfig{
			TimeWindow: 5,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midiroll"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from a dotenv file (if it exists) and then from
// the process environment, which wins.
func (c *Config) ApplyEnv(envFile string) error {
	vars := map[string]string{}
	if envFile != "" {
		fromFile, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", envFile, err)
		}
		maps.Copy(vars, fromFile)
	}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			vars[k] = v
		}
	}

	if v, ok := vars[EnvFilter]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFilter, err)
		}
		c.Filter.Enabled = b
	}
	if v, ok := vars[EnvMinVelocity]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinVelocity, err)
		}
		c.Filter.MinVelocity = n
	}
	if v, ok := vars[EnvMinDuration]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinDuration, err)
		}
		c.Filter.MinDuration = f
	}
	if v, ok := vars[EnvPalette]; ok {
		c.UI.Palette = v
	}
	return nil
}

// Options converts the filter settings into loader options and validates them.
func (c *Config) Options() (midiparser.Options, error) {
	opts := midiparser.Options{
		FilterNotes: c.Filter.Enabled,
		MinVelocity: c.Filter.MinVelocity,
		MinDuration: c.Filter.MinDuration,
	}
	return opts, opts.Validate()
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// InputConfig selects the replays to collect.
type InputConfig struct {
	Pattern string `toml:"pattern"` // Glob matched against file names in a directory
	Workers int    `toml:"workers"` // Replays decoded in parallel
	Coach   string `toml:"coach"`   // Case-insensitive regex on coach names
	Team    string `toml:"team"`    // Case-insensitive regex on team names
}

// OutputConfig controls where and how statistics are written.
type OutputConfig struct {
	Format      string `toml:"format"`       // csv or json
	File        string `toml:"file"`         // Output file, empty for none
	Auto        bool   `toml:"auto"`         // Write '<replay>.<format>' beside each replay
	Silent      bool   `toml:"silent"`       // Suppress the console report
	DumpDecoded bool   `toml:"dump_decoded"` // Write '<replay>.xml'
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Pattern: "*.bbr",
			Workers: 4,
		},
		Output: OutputConfig{
			Format: FormatCSV,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}

		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, config.Validate()
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Input.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Input.Workers)
	}

	if c.Output.Format != FormatCSV && c.Output.Format != FormatJSON {
		return fmt.Errorf("invalid output format %q", c.Output.Format)
	}

	if c.Input.Pattern == "" {
		return errors.New("empty input pattern")
	}

	return nil
}

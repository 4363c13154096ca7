// Package config provides TOML configuration loading for the glkio
// commands. A missing config file is not an error: callers get the
// defaults back.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full configuration tree.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Display DisplayConfig `toml:"display"`
	Term    TermConfig    `toml:"term"`
}

// LogConfig controls logging. Stdout carries the wire protocol, so an
// empty path means stderr, never stdout.
type LogConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// DisplayConfig is the fallback display size for hosts that cannot
// measure a real terminal.
type DisplayConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// TermConfig styles the glkterm front-end.
type TermConfig struct {
	// InputPrefix is drawn before the line-input cursor.
	InputPrefix string `toml:"input_prefix"`

	// Colors maps span style names to tcell color names.
	Colors map[string]string `toml:"colors"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			Width:  80,
			Height: 24,
		},
		Term: TermConfig{
			InputPrefix: "> ",
			Colors: map[string]string{
				"header":     "yellow",
				"subheader":  "olive",
				"emphasized": "white",
				"input":      "aqua",
			},
		},
	}
}

// Load reads the config file at path, layered over the defaults.
// A nonexistent path returns the defaults without error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(data)
}

// LoadReader reads configuration from r, layered over the defaults.
func LoadReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Default(), fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Display.Width <= 0 || cfg.Display.Height <= 0 {
		return Default(), fmt.Errorf("parsing config: display size must be positive")
	}
	return cfg, nil
}

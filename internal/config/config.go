// Package config loads composer.toml, the optional project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"class-composer/internal/export"
	"class-composer/internal/logging"
)

// FileName is the settings file searched for.
const FileName = "composer.toml"

// Color modes for [output] color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the content of composer.toml.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Resolve ResolveConfig `toml:"resolve"`
	Output  OutputConfig  `toml:"output"`

	// Path is where the config was loaded from; empty for defaults.
	Path string `toml:"-"`
}

// LogConfig is the [log] table.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ResolveConfig is the [resolve] table.
type ResolveConfig struct {
	Strict bool `toml:"strict"`
}

// OutputConfig is the [output] table.
type OutputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: logging.INFO, Format: logging.FormatText},
		Output: OutputConfig{Format: string(export.FormatYAML), Color: ColorAuto},
	}
}

// Find searches startDir and its parents for composer.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}

		dir = parent
	}
}

// Load reads the config found from startDir, or the defaults when there is none.
func Load(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}

	if !ok {
		return Default(), nil
	}

	return LoadFile(path)
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("[log] level: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON, "":
	default:
		return fmt.Errorf("[log] format: unknown format %q", c.Log.Format)
	}

	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("[output] format: %w", err)
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever, "":
	default:
		return fmt.Errorf("[output] color: expected auto, always or never, got %q", c.Output.Color)
	}

	return nil
}

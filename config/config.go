// Package config loads golox settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileName is looked up in the working directory when no path is given.
const FileName = "golox.toml"

type Config struct {
	REPL REPLConfig `toml:"repl"`
	Log  LogConfig  `toml:"log"`
}

type REPLConfig struct {
	// Prompt is printed before every line read interactively.
	Prompt string `toml:"prompt"`

	// HistoryFile is relative to the home directory unless absolute.
	// An empty value disables history.
	HistoryFile string `toml:"history_file"`

	// Color enables ANSI colors for diagnostics.
	Color bool `toml:"color"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

func Default() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      "> ",
			HistoryFile: ".golox_history",
			Color:       true,
		},
		Log: LogConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// when path is the default FileName.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if _, err := cfg.Log.SlogLevel(); err != nil {
		return nil, err
	}
	if f := cfg.Log.Format; f != "text" && f != "json" {
		return nil, fmt.Errorf("invalid log format %q: want text or json", f)
	}

	return cfg, nil
}

// SlogLevel converts Level to a slog.Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return level, nil
}

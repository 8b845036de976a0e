package config

import (
	"time"

	"github.com/dshills/keymacro/internal/logging"
)

// MenuConfig holds key menu settings.
type MenuConfig struct {
	// QuitKey is the chord that cancels a menu, in key spec form ("C-g", "<Esc>").
	QuitKey string `yaml:"quitKey" toml:"quitKey"`

	// FirstKey is the character automatic key assignment starts from.
	FirstKey string `yaml:"firstKey" toml:"firstKey"`
}

// PromptConfig selects how keys are read.
type PromptConfig struct {
	// Backend is "tcell" for a full-screen prompt or "line" for an inline one.
	Backend string `yaml:"backend" toml:"backend"`

	// Color highlights menu keys in the line backend.
	Color bool `yaml:"color" toml:"color"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string `yaml:"level" toml:"level"`

	// File sends logs to a rotated file instead of stderr.
	File string `yaml:"file" toml:"file"`

	MaxSizeMB  int `yaml:"maxSizeMB" toml:"maxSizeMB"`
	MaxBackups int `yaml:"maxBackups" toml:"maxBackups"`
}

// LuaConfig configures script execution.
type LuaConfig struct {
	// Timeout bounds a whole script run, as a Go duration ("30s").
	// Empty or "0" disables the limit.
	Timeout string `yaml:"timeout" toml:"timeout"`
}

// Logging returns the logger configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

// FirstKeyRune returns the first auto-assigned menu key.
// Call Validate first; an invalid value yields 0.
func (c *Config) FirstKeyRune() rune {
	if len(c.Menu.FirstKey) != 1 {
		return 0
	}
	return rune(c.Menu.FirstKey[0])
}

// LuaTimeout returns the script timeout, zero meaning none.
func (c *Config) LuaTimeout() (time.Duration, error) {
	if c.Lua.Timeout == "" || c.Lua.Timeout == "0" {
		return 0, nil
	}
	return time.ParseDuration(c.Lua.Timeout)
}

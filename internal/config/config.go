package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/keymacro/internal/config/loader"
	"github.com/dshills/keymacro/internal/input/key"
	"github.com/dshills/keymacro/internal/logging"
)

// EnvPrefix prefixes environment variables read by Load.
const EnvPrefix = "KEYMACRO_"

// Prompt backends.
const (
	BackendTCell = "tcell"
	BackendLine  = "line"
)

// Config is the complete keymacro configuration.
type Config struct {
	Menu   MenuConfig   `yaml:"menu" toml:"menu"`
	Prompt PromptConfig `yaml:"prompt" toml:"prompt"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Lua    LuaConfig    `yaml:"lua" toml:"lua"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Menu: MenuConfig{
			QuitKey:  "C-g",
			FirstKey: "0",
		},
		Prompt: PromptConfig{
			Backend: BackendTCell,
			Color:   true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs      loader.FileSystem
	environ func() []string
}

// WithFS reads the config file from fsys instead of the OS.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnviron replaces os.Environ as the environment source.
func WithEnviron(environ func() []string) Option {
	return func(o *options) {
		o.environ = environ
	}
}

// Load builds the configuration from defaults, the file at path and the
// environment. An empty path skips the file layer; a named file that does
// not exist is an error.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{fs: loader.DefaultFS()}
	for _, opt := range opts {
		opt(&o)
	}

	var merged map[string]any

	if path != "" {
		if _, err := fs.Stat(o.fs, path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, err
		}
		fileCfg, err := loader.ForPath(o.fs, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, fileCfg)
	}

	env := loader.NewEnvLoader(EnvPrefix)
	if o.environ != nil {
		env.WithEnviron(o.environ)
	}
	env.AddMapping(EnvPrefix+"LOG_MAX_SIZE_MB", "log.maxSizeMB")
	envCfg, err := env.Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, envCfg)

	cfg := Default()
	if err := decode(merged, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays a merged layer map onto cfg. Scalars are converted by the
// YAML decoder, so numeric environment values still fill string settings.
func decode(data map[string]any, cfg *Config) error {
	if len(data) == 0 {
		return nil
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error

	if _, err := key.Parse(c.Menu.QuitKey); err != nil {
		errs = append(errs, &ValidationError{
			Path:    "menu.quitKey",
			Message: err.Error(),
			Value:   c.Menu.QuitKey,
			Code:    ErrCodePatternMismatch,
		})
	}

	if len(c.Menu.FirstKey) != 1 || c.Menu.FirstKey[0] <= ' ' || c.Menu.FirstKey[0] > '~' {
		errs = append(errs, &ValidationError{
			Path:    "menu.firstKey",
			Message: "must be a single printable ASCII character",
			Value:   c.Menu.FirstKey,
			Code:    ErrCodePatternMismatch,
		})
	}

	switch c.Prompt.Backend {
	case BackendTCell, BackendLine:
	default:
		errs = append(errs, &ValidationError{
			Path:    "prompt.backend",
			Message: fmt.Sprintf("must be %q or %q", BackendTCell, BackendLine),
			Value:   c.Prompt.Backend,
			Code:    ErrCodeInvalidEnum,
		})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Message: "must be debug, info, warn or error",
			Value:   c.Log.Level,
			Code:    ErrCodeInvalidEnum,
		})
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		errs = append(errs, &ValidationError{
			Path:    "log",
			Message: "rotation limits must not be negative",
			Value:   fmt.Sprintf("maxSizeMB=%d maxBackups=%d", c.Log.MaxSizeMB, c.Log.MaxBackups),
			Code:    ErrCodeOutOfRange,
		})
	}

	if d, err := c.LuaTimeout(); err != nil || d < 0 {
		errs = append(errs, &ValidationError{
			Path:    "lua.timeout",
			Message: "must be a non-negative duration",
			Value:   c.Lua.Timeout,
			Code:    ErrCodePatternMismatch,
		})
	}

	return errors.Join(errs...)
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Package logging builds the zap logger used across keymacro.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the logger.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string

	// File, when set, sends JSON logs to a rotated file instead of stderr.
	File string

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// Output overrides stderr for console logs. Used by tests.
	Output io.Writer
}

// ParseLevel parses a level name (case-insensitive).
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", s)
	}
}

// New creates a logger from cfg.
// The returned close function flushes and releases the log file, if any.
func New(cfg Config) (*zap.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var core zapcore.Core
	closeFn := func() error { return nil }

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     28, // days
			Compress:   true,
		}
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		core = zapcore.NewCore(enc, zapcore.AddSync(rotator), level)
		closeFn = rotator.Close
	} else {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = ""
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), level)
	}

	logger := zap.New(core).Named("keymacro")
	return logger, func() error {
		_ = logger.Sync() // stderr sync fails on some terminals
		return closeFn()
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

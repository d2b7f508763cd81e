// ABOUTME: Process logger setup: slog JSON records to stderr and/or a rotating file.
// ABOUTME: Stdout is left alone so command output and the MCP stdio transport stay clean.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/lumberjack.v2"

	"github.com/harperreed/fitplan/internal/config"
)

// New builds a logger from cfg. With neither console nor file configured it
// writes warnings and above to stderr.
func New(cfg config.LogConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(writer(cfg), &slog.HandlerOptions{Level: level(cfg)}))
}

// Init builds a logger from cfg and installs it as the slog default.
func Init(cfg config.LogConfig) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	logger.Debug("logger initialized", "level", cfg.Level, "file", cfg.File)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writer(cfg config.LogConfig) io.Writer {
	var writers []io.Writer
	if cfg.Console || cfg.File == "" {
		writers = append(writers, os.Stderr)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.ExpandPath(cfg.File),
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			LocalTime:  true,
		})
	}
	if len(writers) == 1 {
		return writers[0]
	}
	return io.MultiWriter(writers...)
}

func level(cfg config.LogConfig) slog.Level {
	if cfg.Level == "" && !cfg.Console && cfg.File == "" {
		return slog.LevelWarn
	}
	return ParseLevel(cfg.Level)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

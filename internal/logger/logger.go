// Package logger configures the global zerolog logger with optional file rotation.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the rotated log file inside the log directory
const FileName = "vslauncher.log"

// Config holds logger configuration.
type Config struct {
	Level      string
	Format     string // "text" or "json"
	Dir        string // directory for log files, empty disables the file
	MaxSizeMB  int
	MaxBackups int
}

// Logger owns the writers behind the global logger
type Logger struct {
	rotator *lumberjack.Logger
}

// Setup installs the global logger writing to console, and to a rotating file when Dir is set.
func Setup(cfg Config, console io.Writer) (*Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	var consoleOutput io.Writer = console
	if cfg.Format != "json" {
		consoleOutput = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	}

	output := consoleOutput
	var rotator *lumberjack.Logger

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, err
		}

		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}

		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, FileName),
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     30,
			Compress:   true,
			LocalTime:  true,
		}
		// the file always gets JSON lines
		output = zerolog.MultiLevelWriter(consoleOutput, rotator)
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	return &Logger{rotator: rotator}, nil
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l == nil || l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

// ParseLevel converts a configured level to a zerolog.Level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

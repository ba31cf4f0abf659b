package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes a new zerolog.Logger writing to stderr.
// 'devMode' enables human-readable console logging.
func New(devMode bool, level string) zerolog.Logger {
	return NewWithWriter(os.Stderr, devMode, level)
}

// NewWithWriter is New with an explicit destination.
// An unknown level falls back to info.
func NewWithWriter(w io.Writer, devMode bool, level string) zerolog.Logger {
	var logger zerolog.Logger

	if devMode {
		// Human-readable, colorful output for local development
		consoleWriter := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		// Efficient JSON output for production
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

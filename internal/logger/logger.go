// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options configures the process-wide logger.
type Options struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

// New creates a configured logger instance
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	// Parse and set log level
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", opts.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch opts.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		// Text formatter with timestamps for development
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// NewLogger creates a logger from a bare level string, switching to JSON
// output when running in production.
func NewLogger(logLevel string) *logrus.Logger {
	format := "text"
	if os.Getenv("ENVIRONMENT") == "production" {
		format = "json"
	}
	return New(Options{Level: logLevel, Format: format})
}

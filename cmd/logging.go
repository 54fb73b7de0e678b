package cmd

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogging configures slog with charmbracelet/log for colorful output.
func SetupLogging(levelStr string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           parseLevel(levelStr),
		ReportTimestamp: true,
	})

	slog.SetDefault(slog.New(logger))
}

func parseLevel(levelStr string) log.Level {
	switch levelStr {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

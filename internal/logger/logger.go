package logger

import (
	"log/slog"
	"os"
)

// InitLogger initializes the application logger based on environment.
// jsonOutput selects the JSON handler; development also turns on debug level
// and source locations. The logger is installed as the slog default.
func InitLogger(environment string, jsonOutput bool) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if environment == "development" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)

	// Set as default logger so it can be used throughout the application
	slog.SetDefault(logger)

	return logger
}

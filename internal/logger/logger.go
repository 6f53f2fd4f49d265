package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Init initializes the structured logger to write to a file under dir
// This avoids interfering with the TUI output
func Init(dir, level string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dir, "tgcp.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return nil
}

// parseLevel resolves the log level from the flag value, falling back to
// the TGCP_LOG_LEVEL environment variable. Defaults to INFO.
func parseLevel(level string) slog.Level {
	if level == "" {
		level = os.Getenv("TGCP_LOG_LEVEL")
	}
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

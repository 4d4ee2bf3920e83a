package logger

import (
	"log/slog"
	"os"
)

// EnvTestLevel overrides the level of loggers built by NewTestLogger.
const EnvTestLevel = "ENCORE_TEST_LOG_LEVEL"

// NewTestLogger creates a quiet logger for tests: WARN and above, as text on
// stdout so records interleave with go test -v output. Set
// ENCORE_TEST_LOG_LEVEL=debug to see everything.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if parsed, ok := ParseLevel(os.Getenv(EnvTestLevel)); ok {
		level = parsed
	}

	return NewLogger(Config{
		Level:  level,
		Format: "text",
		Output: os.Stdout,
	})
}

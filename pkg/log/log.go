package log

import (
	"log/slog"
	"os"
)

func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

// WithRun scopes the engine's module logger to a single workflow run,
// so every line the scheduler emits for that run - including the ones
// logged from separate node goroutines - carries the same run_id and
// can be correlated back to the workflow that produced it.
func WithRun(runID, workflowID string) *slog.Logger {
	return WithModule("engine").With("run_id", runID, "workflow_id", workflowID)
}

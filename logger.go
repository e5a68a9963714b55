package semcache

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with semcache-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithAgent adds an agent_id field to the logger.
func (l *Logger) WithAgent(agentID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("agent_id", agentID),
	}
}

// WithTopK adds a top_k field to the logger.
func (l *Logger) WithTopK(topK int) *Logger {
	return &Logger{
		Logger: l.Logger.With("top_k", topK),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogSearch logs one request through the search path.
func (l *Logger) LogSearch(ctx context.Context, agentID string, source Source, topK, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"agent_id", agentID,
			"top_k", topK,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"agent_id", agentID,
			"source", source,
			"top_k", topK,
			"results", results,
		)
	}
}

// LogEmbedBatch logs a batched embedding-provider call.
func (l *Logger) LogEmbedBatch(ctx context.Context, queries, chunks int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "embedding batch failed",
			"queries", queries,
			"chunks", chunks,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "embedding batch completed",
			"queries", queries,
			"chunks", chunks,
		)
	}
}

// LogFiltered logs a query answered from the filler allow-list.
func (l *Logger) LogFiltered(ctx context.Context, agentID string) {
	l.DebugContext(ctx, "query answered without retrieval",
		"agent_id", agentID,
	)
}

// LogInvalidate logs a per-agent bulk invalidation.
func (l *Logger) LogInvalidate(ctx context.Context, agentID string, removed int) {
	l.InfoContext(ctx, "agent cache invalidated",
		"agent_id", agentID,
		"removed", removed,
	)
}

// LogRemote logs a remote-store operation outcome. Remote failures are
// logged, never surfaced: the remote store is an optimization.
func (l *Logger) LogRemote(ctx context.Context, op, agentID string, err error) {
	if err != nil {
		l.WarnContext(ctx, "remote store operation failed",
			"op", op,
			"agent_id", agentID,
			"error", err,
		)
	}
}

package sparsedot

import (
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/sparsedot/csr"
	"github.com/hupe1980/sparsedot/internal/partition"
)

// Logger wraps slog.Logger with sparsedot-specific context.
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

// WithTopN adds a top_n field to the logger.
func (l *Logger) WithTopN(topN int) *Logger {
	return &Logger{
		Logger: l.Logger.With("top_n", topN),
	}
}

// WithWorkers adds a workers field to the logger.
func (l *Logger) WithWorkers(workers int) *Logger {
	return &Logger{
		Logger: l.Logger.With("workers", workers),
	}
}

// WithStrategy adds a strategy field to the logger.
func (l *Logger) WithStrategy(s Strategy) *Logger {
	return &Logger{
		Logger: l.Logger.With("strategy", s.String()),
	}
}

// LogMultiply logs a multiply operation.
func (l *Logger) LogMultiply(stats MultiplyStats, duration time.Duration, err error) {
	if err != nil {
		l.Error("multiply failed",
			"rows", stats.Rows,
			"cols", stats.Cols,
			"error", err,
		)
	} else {
		l.Debug("multiply completed",
			"rows", stats.Rows,
			"cols", stats.Cols,
			"kept", stats.Kept,
			"candidates", stats.Candidates,
			"duration", duration,
		)
	}
}

// LogPartitions logs the row ranges assigned to parallel workers.
func (l *Logger) LogPartitions(scheme PartitionScheme, ranges []partition.Range) {
	if len(ranges) == 0 {
		return
	}
	smallest, largest := ranges[0].Len(), ranges[0].Len()
	for _, r := range ranges[1:] {
		smallest = min(smallest, r.Len())
		largest = max(largest, r.Len())
	}
	l.Debug("rows partitioned",
		"scheme", scheme.String(),
		"partitions", len(ranges),
		"min_rows", smallest,
		"max_rows", largest,
	)
}

// LogConversion logs an operand converted to another storage order.
func (l *Logger) LogConversion(operand string, from, to csr.Order, nnz int) {
	l.Debug("operand converted",
		"operand", operand,
		"from", from.String(),
		"to", to.String(),
		"nnz", nnz,
	)
}

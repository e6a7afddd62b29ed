package sparsedot

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/sparsedot/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	strategy         Strategy
	blockSize        int
	density          float64
	scheme           PartitionScheme
	memoryLimit      int64
	controller       *resource.Controller
	err              error
}

// Option configures a multiply call.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sparsedot.BasicMetricsCollector{}
//	res, _ := sparsedot.MultiplyTopN(a, b, 10, 0, sparsedot.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Kept: %d, Avg latency: %dns\n", stats.Kept, stats.MultiplyAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := sparsedot.NewJSONLogger(slog.LevelDebug)
//	res, _ := sparsedot.MultiplyTopN(a, b, 10, 0, sparsedot.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithStrategy selects the candidate enumeration strategy.
//
// StrategyAuto (the default) uses StrategyAccumulate for a row-major right
// operand and StrategyScalar for a column-major one, so no conversion
// happens. Any other choice converts the right operand once if it is
// stored in the wrong order.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithBlockSize sets the number of right columns StrategyBlock computes at a time.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: %d", ErrInvalidBlockSize, n)
			return
		}
		o.blockSize = n
	}
}

// WithDensity pre-reserves ceil(density * topN * rows) result entries.
// A good estimate avoids buffer growth; zero reserves nothing.
func WithDensity(density float64) Option {
	return func(o *options) {
		o.density = density
	}
}

// WithPartitionScheme selects how rows are split between parallel workers.
func WithPartitionScheme(s PartitionScheme) Option {
	return func(o *options) {
		o.scheme = s
	}
}

// WithMemoryLimit caps the memory charged for result buffers and kernel
// workspace. Exceeding it fails the call with ErrResourceExhausted.
// Zero disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController shares one resource controller between calls, so
// concurrent multiplies respect a common memory limit and worker budget.
// It takes precedence over WithMemoryLimit.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		strategy:         StrategyAuto,
		scheme:           PartitionByWork,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.controller == nil && o.memoryLimit > 0 {
		o.controller = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}
	return o, o.err
}

package purefn

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const meterName = "github.com/on-the-ground/categorical_go/purefn"

// Option configures the observability of a cache.
type Option func(*config)

type config struct {
	logger *zap.Logger
	meter  metric.Meter
}

// WithLogger sets the logger used for hit, miss and failure events.
// Events are emitted at debug level. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMeter sets the meter the memo.hits, memo.misses and memo.failures
// counters are created on. A nil meter is ignored.
func WithMeter(meter metric.Meter) Option {
	return func(c *config) {
		if meter != nil {
			c.meter = meter
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		logger: zap.NewNop(),
		meter:  noop.NewMeterProvider().Meter(meterName),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

package purefn

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// observer reports cache events. It never influences what the cache returns.
type observer struct {
	id      string
	logger  *zap.Logger
	metrics *memoMetrics
}

func newObserver(kind string, opts []Option) *observer {
	cfg := newConfig(opts)
	id := uuid.New().String()
	logger := cfg.logger.With(zap.String("cacheId", id))

	metrics, err := newMemoMetrics(cfg.meter, id)
	if err != nil {
		logger.Warn("failed to create memo metrics, falling back to noop", zap.Error(err))
		metrics, _ = newMemoMetrics(noop.NewMeterProvider().Meter(meterName), id)
	}

	logger.Debug("created memo cache", zap.String("kind", kind))
	return &observer{
		id:      id,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *observer) hit(key any) {
	o.metrics.hits.Add(context.Background(), 1, o.metrics.attrs)
	if ce := o.logger.Check(zap.DebugLevel, "memo hit"); ce != nil {
		ce.Write(zap.Any("key", key))
	}
}

func (o *observer) miss(key any) {
	o.metrics.misses.Add(context.Background(), 1, o.metrics.attrs)
	if ce := o.logger.Check(zap.DebugLevel, "memo miss"); ce != nil {
		ce.Write(zap.Any("key", key))
	}
}

func (o *observer) failure(key any, err error) {
	o.metrics.failures.Add(context.Background(), 1, o.metrics.attrs)
	if ce := o.logger.Check(zap.DebugLevel, "memo evaluation failed, nothing recorded"); ce != nil {
		ce.Write(zap.Any("key", key), zap.Error(err))
	}
}

type memoMetrics struct {
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	failures metric.Int64Counter
	attrs    metric.MeasurementOption
}

func newMemoMetrics(meter metric.Meter, id string) (*memoMetrics, error) {
	hits, err := meter.Int64Counter(
		"memo.hits",
		metric.WithDescription("Calls answered from the memo table"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"memo.misses",
		metric.WithDescription("Calls that evaluated the wrapped function"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"memo.failures",
		metric.WithDescription("Evaluations that failed and were not recorded"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &memoMetrics{
		hits:     hits,
		misses:   misses,
		failures: failures,
		attrs:    metric.WithAttributes(attribute.String("memo.id", id)),
	}, nil
}

package helper

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// MeasureSpan calls f(x) once and returns the wall-clock span it took.
// The result of f is discarded.
func MeasureSpan[A, B any](f func(A) B, x A) timespan.TimeSpan {
	start := time.Now()
	f(x)
	return timespan.BetweenTimes(start, time.Now())
}

// MeasureTime is MeasureSpan reduced to its duration.
func MeasureTime[A, B any](f func(A) B, x A) time.Duration {
	return MeasureSpan(f, x).Duration()
}

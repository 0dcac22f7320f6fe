package benchmark

import "time"

// Clock is the time source used to measure batches.
type Clock interface {
	Now() time.Time
	// Elapsed returns end-start, never negative.
	Elapsed(start, end time.Time) time.Duration
}

// MonotonicClock reads the runtime's monotonic clock through time.Now, so
// elapsed times are unaffected by wall-clock steps.
type MonotonicClock struct{}

func (MonotonicClock) Now() time.Time { return time.Now() }

func (MonotonicClock) Elapsed(start, end time.Time) time.Duration {
	if d := end.Sub(start); d > 0 {
		return d
	}
	return 0
}

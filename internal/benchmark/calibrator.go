package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// errPilotStopped is returned by an abandoned pilot search; the caller has
// already reported timeout or cancellation by then.
var errPilotStopped = errors.New("pilot stopped")

// Plan is the batch layout chosen for one case.
type Plan struct {
	IterationsPerBatch uint64        `json:"iterationsPerBatch"`
	WarmupBatches      int           `json:"warmupBatches"`
	MeasuredBatches    int           `json:"measuredBatches"`
	PilotElapsed       time.Duration `json:"pilotElapsed"`
	PilotTrials        int           `json:"pilotTrials"`
	Capped             bool          `json:"capped,omitempty"`
}

// Calibrator finds the batch size at which one batch runs for at least the
// minimum batch duration.
type Calibrator struct {
	clock         Clock
	minBatch      time.Duration
	maxIterations uint64
	timeout       time.Duration
	warmup        int
	measured      int
}

// NewCalibrator returns a calibrator using clock and the batch settings of opts.
func NewCalibrator(clock Clock, opts Options) *Calibrator {
	opts = opts.withDefaults()
	return &Calibrator{
		clock:         clock,
		minBatch:      opts.MinBatchDuration,
		maxIterations: opts.MaxBatchIterations,
		timeout:       opts.CalibrationTimeout,
		warmup:        opts.MaxWarmupBatches,
		measured:      opts.MeasuredBatches,
	}
}

type pilotResult struct {
	plan Plan
	err  error
}

// Calibrate doubles the batch size, starting at one call, until a batch takes
// at least the minimum duration or the iteration cap is reached.
//
// The search runs on its own goroutine so an operation that never returns is
// bounded by the calibration timeout; in that case ErrCalibrationTimeout is
// returned and the goroutine is abandoned. Cancellation of ctx takes effect
// between trial batches.
func (cal *Calibrator) Calibrate(ctx context.Context, c *Case) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}

	var stop atomic.Bool
	done := make(chan pilotResult, 1)
	go func() {
		done <- cal.search(c, &stop)
	}()

	timer := time.NewTimer(cal.timeout)
	defer timer.Stop()
	timeoutErr := fmt.Errorf("%w after %s", ErrCalibrationTimeout, cal.timeout)

	select {
	case res := <-done:
		return res.plan, res.err
	case <-timer.C:
		stop.Store(true)
		return Plan{}, timeoutErr
	case <-ctx.Done():
		stop.Store(true)
		// Let the trial in flight finish so the case is not torn down under it.
		select {
		case <-done:
			return Plan{}, ctx.Err()
		case <-timer.C:
			return Plan{}, timeoutErr
		}
	}
}

func (cal *Calibrator) search(c *Case, stop *atomic.Bool) pilotResult {
	plan := Plan{WarmupBatches: cal.warmup, MeasuredBatches: cal.measured}
	n := uint64(1)
	for {
		if stop.Load() {
			return pilotResult{err: errPilotStopped}
		}
		start := cal.clock.Now()
		if err := c.runBatch(n); err != nil {
			return pilotResult{err: err}
		}
		elapsed := cal.clock.Elapsed(start, cal.clock.Now())

		plan.PilotTrials++
		plan.IterationsPerBatch = n
		plan.PilotElapsed = elapsed
		if elapsed >= cal.minBatch {
			return pilotResult{plan: plan}
		}
		if n >= cal.maxIterations {
			plan.Capped = true
			return pilotResult{plan: plan}
		}
		if n > cal.maxIterations/2 {
			n = cal.maxIterations
		} else {
			n *= 2
		}
	}
}

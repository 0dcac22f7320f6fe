// Package benchmark measures the execution time and heap allocations of
// registered operations.
//
// A run executes one case at a time. Each case moves through
// Setup, Pilot, Warmup, Measuring and Teardown; samples are recorded per batch,
// never per call, and reduced with metrics.Summarize. Cancellation and the run
// timeout are only observed between batches and between cases respectively.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/mwiater/hashbench/internal/logging"
	"github.com/mwiater/hashbench/internal/metrics"
)

// State is a step of the per-case state machine.
type State int

const (
	StateIdle State = iota
	StateSetup
	StatePilot
	StateWarmup
	StateMeasuring
	StateTeardown
	StateDone
	StateFailed
)

var stateNames = [...]string{"idle", "setup", "pilot", "warmup", "measuring", "teardown", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// EventKind identifies a progress notification.
type EventKind int

const (
	EventCaseStarted EventKind = iota
	EventCaseFinished
)

// Event is sent to the Observer at case boundaries.
type Event struct {
	Kind  EventKind
	Index int
	Total int
	Case  string
	// Entry is set for EventCaseFinished.
	Entry *Entry
}

// Observer receives progress events. It is called on the runner's goroutine
// and only between cases.
type Observer func(Event)

// Runner executes cases sequentially.
type Runner struct {
	opts       Options
	clock      Clock
	probe      MemoryProbe
	observer   Observer
	calibrator *Calibrator
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock replaces the monotonic clock.
func WithClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithProbe replaces the runtime memory probe.
func WithProbe(p MemoryProbe) RunnerOption {
	return func(r *Runner) { r.probe = p }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// NewRunner returns a runner for opts; zero-valued options take their defaults.
func NewRunner(opts Options, ropts ...RunnerOption) *Runner {
	r := &Runner{
		opts:  opts.withDefaults(),
		clock: MonotonicClock{},
		probe: RuntimeProbe{},
	}
	for _, o := range ropts {
		o(r)
	}
	r.calibrator = NewCalibrator(r.clock, r.opts)
	return r
}

// Options returns the effective options.
func (r *Runner) Options() Options { return r.opts }

// Run measures every case in reg with the default clock and memory probe.
func Run(ctx context.Context, reg *Registry, opts Options) (*Report, error) {
	return NewRunner(opts).Run(ctx, reg)
}

// Run measures the cases of reg in registration order.
//
// Failures stay local to their case. Only cancellation of ctx or the run
// timeout stop the run; the returned report then still lists every case, and
// the error wraps ErrRunCancelled or ErrRunTimeout.
func (r *Runner) Run(ctx context.Context, reg *Registry) (*Report, error) {
	report := newReport(r.opts)
	cases := reg.Cases()
	report.Entries = make([]Entry, 0, len(cases))

	var deadline time.Time
	if r.opts.RunTimeout > 0 {
		deadline = r.clock.Now().Add(r.opts.RunTimeout)
	}
	logging.LogEvent("Running %d benchmark(s): batch>=%s warmup<=%d measured=%d",
		len(cases), r.opts.MinBatchDuration, r.opts.MaxWarmupBatches, r.opts.MeasuredBatches)

	var runErr error
	for i, c := range cases {
		if runErr == nil {
			switch {
			case ctx.Err() != nil:
				runErr = fmt.Errorf("%w: %w", ErrRunCancelled, context.Cause(ctx))
			case !deadline.IsZero() && !r.clock.Now().Before(deadline):
				runErr = fmt.Errorf("%w after %s", ErrRunTimeout, r.opts.RunTimeout)
			}
		}
		if runErr != nil {
			report.Entries = append(report.Entries, notRunEntry(c, runErr))
			continue
		}

		r.notify(Event{Kind: EventCaseStarted, Index: i, Total: len(cases), Case: c.name})
		entry := r.RunCase(ctx, c)
		report.Entries = append(report.Entries, entry)
		r.notify(Event{Kind: EventCaseFinished, Index: i, Total: len(cases), Case: c.name, Entry: &report.Entries[i]})

		if entry.OperationAbandoned {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"operation of %q did not return after the calibration timeout and may still be running; results of later cases may be affected", c.name))
		}

		if errors.Is(entry.err, context.Canceled) || errors.Is(entry.err, context.DeadlineExceeded) {
			runErr = fmt.Errorf("%w: %w", ErrRunCancelled, context.Cause(ctx))
		}
	}

	report.applyBaseline()
	report.FinishedAt = time.Now()
	ok, skipped, failed := report.Counts()
	logging.LogEvent("Run %s finished: %d ok, %d skipped, %d failed", report.RunID, ok, skipped, failed)
	return report, runErr
}

func (r *Runner) notify(ev Event) {
	if r.observer != nil {
		r.observer(ev)
	}
}

func notRunEntry(c *Case, cause error) Entry {
	reason := "not run: run cancelled"
	if errors.Is(cause, ErrRunTimeout) {
		reason = "not run: run timeout"
	}
	return Entry{
		Name:     c.name,
		Status:   StatusSkipped,
		Reason:   reason,
		Error:    cause.Error(),
		States:   []State{StateIdle},
		Baseline: c.baseline,
		err:      cause,
	}
}

// RunCase drives one case through the state machine and returns its entry.
func (r *Runner) RunCase(ctx context.Context, c *Case) Entry {
	m := &caseMachine{
		r: r,
		c: c,
		entry: Entry{
			Name:            c.name,
			Status:          StatusOK,
			MemoryAvailable: r.probe.Available(),
			Baseline:        c.baseline,
			States:          []State{StateIdle},
		},
	}
	m.run(ctx)
	m.entry.OperationAbandoned = m.abandoned
	return m.entry
}

// caseMachine holds the mutable state of one case while it runs.
type caseMachine struct {
	r        *Runner
	c        *Case
	entry    Entry
	state    State
	failures int
	// abandoned is set when a pilot goroutine may still be executing the
	// operation, in which case teardown must not run.
	abandoned bool
}

func (m *caseMachine) enter(s State) {
	m.state = s
	m.entry.States = append(m.entry.States, s)
	logging.LogCaseEvent(m.c.name, s.String(), "")
}

func (m *caseMachine) caseErr(err error) error {
	var ce *CaseError
	if errors.As(err, &ce) {
		return err
	}
	return &CaseError{Case: m.c.name, State: m.state, Err: err}
}

func (m *caseMachine) run(ctx context.Context) {
	m.enter(StateSetup)
	if err := m.c.runSetup(); err != nil {
		m.finish(m.caseErr(fmt.Errorf("%w: %w", ErrSetupFailure, err)))
		return
	}

	samples, err := m.execute(ctx)

	if m.abandoned {
		logging.LogCaseEvent(m.c.name, StateTeardown.String(), "skipped: operation still running")
	} else {
		m.enter(StateTeardown)
		if terr := m.c.runTeardown(); terr != nil {
			terr = m.caseErr(fmt.Errorf("%w: %w", ErrTeardownFailure, terr))
			m.entry.TeardownError = terr.Error()
			logging.LogCaseEvent(m.c.name, StateTeardown.String(), "%v", terr)
		}
	}

	if err != nil {
		m.finish(err)
		return
	}

	summary := metrics.Summarize(samples, m.r.opts.OutlierFence, m.r.opts.Confidence)
	m.entry.Summary = &summary
	m.entry.NsPerOp = metrics.NsPerOp(samples)
	m.enter(StateDone)
	logging.LogCaseEvent(m.c.name, StateDone.String(), "mean=%.2fns/op ±%.2f stddev=%.2f bytes/op=%.1f samples=%d/%d high-variance=%v",
		summary.MeanNsPerOp, summary.ErrorNsPerOp, summary.StdDevNsPerOp, summary.MeanBytesPerOp,
		summary.Retained, summary.SampleCount, summary.HighVariance)
}

// finish records err against the entry and sets its status.
func (m *caseMachine) finish(err error) {
	m.entry.err = err
	m.entry.Error = err.Error()
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.entry.Status = StatusSkipped
		m.entry.Reason = "incomplete: run cancelled"
	case errors.Is(err, ErrCalibrationTimeout):
		m.entry.Status = StatusSkipped
		m.entry.Reason = "skipped: could not calibrate"
	default:
		m.entry.Status = StatusFailed
		m.entry.Reason = "failed"
		m.state = StateFailed
		m.entry.States = append(m.entry.States, StateFailed)
	}
	logging.LogCaseEvent(m.c.name, string(m.entry.Status), "%v", err)
}

func (m *caseMachine) execute(ctx context.Context) ([]metrics.Sample, error) {
	m.enter(StatePilot)
	plan, err := m.calibrate(ctx)
	if err != nil {
		return nil, m.caseErr(err)
	}
	m.entry.Plan = &plan
	logging.LogCaseEvent(m.c.name, StatePilot.String(), "iterations/batch=%d pilot=%s trials=%d capped=%v",
		plan.IterationsPerBatch, plan.PilotElapsed, plan.PilotTrials, plan.Capped)

	m.enter(StateWarmup)
	if err := m.warmup(ctx, plan); err != nil {
		return nil, m.caseErr(err)
	}

	m.enter(StateMeasuring)
	samples, err := m.measure(ctx, plan)
	if err != nil {
		return nil, m.caseErr(err)
	}
	return samples, nil
}

func (m *caseMachine) calibrate(ctx context.Context) (Plan, error) {
	for {
		plan, err := m.r.calibrator.Calibrate(ctx, m.c)
		switch {
		case err == nil:
			return plan, nil
		case errors.Is(err, ErrCalibrationTimeout):
			m.abandoned = true
			return Plan{}, err
		case errors.Is(err, ErrOperationPanic) && m.retry(err):
			continue
		default:
			return Plan{}, err
		}
	}
}

// retry records a panicking batch and reports whether the budget allows another attempt.
func (m *caseMachine) retry(err error) bool {
	m.failures++
	if m.failures > m.r.opts.RetryBudget {
		return false
	}
	m.entry.Retries++
	logging.LogCaseEvent(m.c.name, m.state.String(), "batch discarded (%d/%d): %v", m.failures, m.r.opts.RetryBudget, err)
	return true
}

// warmup runs batches until two consecutive batch durations are within the
// stability threshold or the warmup cap is reached.
func (m *caseMachine) warmup(ctx context.Context, plan Plan) error {
	var prev time.Duration
	for i := 0; i < plan.WarmupBatches; i++ {
		s, err := m.timeBatch(ctx, plan.IterationsPerBatch, NullProbe{})
		if err != nil {
			return err
		}
		m.entry.WarmupBatches++
		m.entry.Warmup.Update(s.NsPerOp())
		if i > 0 && metrics.RelativeChange(float64(prev), float64(s.Elapsed)) < m.r.opts.WarmupStability {
			m.entry.WarmupStable = true
			break
		}
		prev = s.Elapsed
	}
	logging.LogCaseEvent(m.c.name, StateWarmup.String(), "batches=%d stable=%v", m.entry.WarmupBatches, m.entry.WarmupStable)
	return nil
}

func (m *caseMachine) measure(ctx context.Context, plan Plan) ([]metrics.Sample, error) {
	runtime.GC()
	samples := make([]metrics.Sample, 0, plan.MeasuredBatches)
	for len(samples) < plan.MeasuredBatches {
		s, err := m.timeBatch(ctx, plan.IterationsPerBatch, m.r.probe)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// timeBatch runs one batch with the clock and probe straddling the whole
// batch. Cancellation is checked before the batch starts, never during it.
// Panicking batches are discarded and repeated while the retry budget lasts.
func (m *caseMachine) timeBatch(ctx context.Context, n uint64, probe MemoryProbe) (metrics.Sample, error) {
	clock := m.r.clock
	for {
		if err := ctx.Err(); err != nil {
			return metrics.Sample{}, err
		}
		before := probe.Snapshot()
		start := clock.Now()
		err := m.c.runBatch(n)
		end := clock.Now()
		after := probe.Snapshot()
		if err != nil {
			if m.retry(err) {
				continue
			}
			return metrics.Sample{}, err
		}
		bytes, allocs := Delta(before, after)
		return metrics.Sample{
			Iterations:     n,
			Elapsed:        clock.Elapsed(start, end),
			BytesAllocated: bytes,
			Allocs:         allocs,
		}, nil
	}
}

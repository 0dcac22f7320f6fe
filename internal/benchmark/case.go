package benchmark

import "runtime"

// Case is a named unit of work to be measured. Construct it with New; it is
// immutable afterwards.
type Case struct {
	name     string
	batch    func(n uint64)
	setup    func() error
	teardown func() error
	baseline bool
}

// CaseOption configures a Case.
type CaseOption func(*Case)

// WithSetup registers a hook run once before calibration, outside the timed region.
func WithSetup(fn func() error) CaseOption {
	return func(c *Case) { c.setup = fn }
}

// WithTeardown registers a hook run once after measurement, outside the timed region.
func WithTeardown(fn func() error) CaseOption {
	return func(c *Case) { c.teardown = fn }
}

// AsBaseline marks the case as the reference other cases are compared against.
func AsBaseline() CaseOption {
	return func(c *Case) { c.baseline = true }
}

// New builds a case around op. Every call's result is assigned to a local that
// is kept alive after the batch, so the compiler cannot drop the measured work.
// Results are not converted to interfaces inside the loop, so no allocation is
// added to what op itself does.
func New[T any](name string, op func() T, opts ...CaseOption) *Case {
	c := &Case{
		name: name,
		batch: func(n uint64) {
			var r T
			for i := uint64(0); i < n; i++ {
				r = op()
			}
			runtime.KeepAlive(r)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the case name.
func (c *Case) Name() string { return c.name }

// Baseline reports whether the case was marked with AsBaseline.
func (c *Case) Baseline() bool { return c.baseline }

// runBatch invokes the operation n times. A panic is returned as an error
// wrapping ErrOperationPanic.
func (c *Case) runBatch(n uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	c.batch(n)
	return nil
}

func (c *Case) runSetup() error {
	if c.setup == nil {
		return nil
	}
	return c.setup()
}

func (c *Case) runTeardown() error {
	if c.teardown == nil {
		return nil
	}
	return c.teardown()
}

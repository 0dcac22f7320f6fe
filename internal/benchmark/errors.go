package benchmark

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is returned by Register when a case with the same name exists.
	ErrDuplicateName = errors.New("duplicate benchmark name")
	// ErrSetupFailure marks a case whose setup hook returned an error.
	ErrSetupFailure = errors.New("setup failed")
	// ErrTeardownFailure marks a case whose teardown hook returned an error.
	ErrTeardownFailure = errors.New("teardown failed")
	// ErrCalibrationTimeout marks a case that could not be calibrated in time.
	ErrCalibrationTimeout = errors.New("calibration timed out")
	// ErrOperationPanic marks a case whose operation panicked more often than the retry budget allows.
	ErrOperationPanic = errors.New("operation panicked")
	// ErrRunCancelled is returned by Run when the context is cancelled before every case finished.
	ErrRunCancelled = errors.New("run cancelled")
	// ErrRunTimeout is returned by Run when the run timeout expires before every case started.
	ErrRunTimeout = errors.New("run timed out")
)

// CaseError attaches the case name and the state it failed in to an error.
type CaseError struct {
	Case  string
	State State
	Err   error
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("benchmark %q (%s): %v", e.Case, e.State, e.Err)
}

func (e *CaseError) Unwrap() error { return e.Err }

// panicError converts a recovered panic value into an error wrapping ErrOperationPanic.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", ErrOperationPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrOperationPanic, v)
}

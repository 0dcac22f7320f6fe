package benchmark

import (
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/mwiater/hashbench/internal/metrics"
)

// Status is the outcome of one case.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Entry is the result of one case. Every registered case gets an entry, even
// when it was skipped or failed.
type Entry struct {
	Name            string              `json:"name"`
	Status          Status              `json:"status"`
	Reason          string              `json:"reason,omitempty"`
	Error           string              `json:"error,omitempty"`
	TeardownError   string              `json:"teardownError,omitempty"`
	States          []State             `json:"states"`
	Plan            *Plan               `json:"plan,omitempty"`
	WarmupBatches   int                 `json:"warmupBatches"`
	WarmupStable    bool                `json:"warmupStable"`
	Warmup          metrics.RunningStat `json:"warmupNsPerOp"`
	Retries         int                 `json:"retries"`
	MemoryAvailable bool                `json:"memoryAvailable"`
	Baseline        bool                `json:"baseline,omitempty"`
	Summary         *metrics.Summary    `json:"summary,omitempty"`
	NsPerOp         []float64           `json:"nsPerOp,omitempty"`
	Comparison      *metrics.Comparison `json:"comparison,omitempty"`

	// OperationAbandoned is set when the operation did not return before the
	// calibration timeout; its goroutine may still be running.
	OperationAbandoned bool `json:"operationAbandoned,omitempty"`

	err error
}

// Err returns the error that ended the case, if any.
func (e *Entry) Err() error { return e.err }

// HasSamples reports whether the entry carries measured statistics.
func (e *Entry) HasSamples() bool {
	return e.Summary != nil && e.Summary.SampleCount > 0
}

// Report is the render-agnostic result of a run. Entries are in registration order.
type Report struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	GoVersion  string    `json:"goVersion"`
	GOOS       string    `json:"goos"`
	GOARCH     string    `json:"goarch"`
	NumCPU     int       `json:"numCpu"`
	Options    Options   `json:"options"`
	Entries    []Entry   `json:"entries"`
	// Warnings lists conditions that may have disturbed the measurements.
	Warnings []string `json:"warnings,omitempty"`
}

func newReport(opts Options) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		Options:   opts,
	}
}

// Lookup returns the entry for name.
func (r *Report) Lookup(name string) (*Entry, bool) {
	for i := range r.Entries {
		if r.Entries[i].Name == name {
			return &r.Entries[i], true
		}
	}
	return nil, false
}

// Counts returns the number of entries per status.
func (r *Report) Counts() (ok, skipped, failed int) {
	for _, e := range r.Entries {
		switch e.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return ok, skipped, failed
}

// ExitCode returns 1 if any case failed without producing samples, 0 otherwise.
func (r *Report) ExitCode() int {
	for i := range r.Entries {
		if r.Entries[i].Status == StatusFailed && !r.Entries[i].HasSamples() {
			return 1
		}
	}
	return 0
}

// applyBaseline compares every measured entry against the first measured
// baseline entry.
func (r *Report) applyBaseline() {
	var base *Entry
	for i := range r.Entries {
		if r.Entries[i].Baseline && r.Entries[i].HasSamples() {
			base = &r.Entries[i]
			break
		}
	}
	if base == nil {
		return
	}
	for i := range r.Entries {
		e := &r.Entries[i]
		if !e.HasSamples() {
			continue
		}
		cmp := metrics.Compare(base.NsPerOp, e.NsPerOp, base.Summary.MeanNsPerOp, e.Summary.MeanNsPerOp)
		e.Comparison = &cmp
	}
}

package benchmark

import (
	"time"

	"github.com/mwiater/hashbench/internal/metrics"
)

const (
	// DefaultMinBatchDuration is the shortest batch the calibrator accepts.
	DefaultMinBatchDuration = 100 * time.Millisecond
	// DefaultMaxBatchIterations caps the calibrated batch size.
	DefaultMaxBatchIterations uint64 = 1 << 30
	// DefaultMaxWarmupBatches caps the adaptive warmup.
	DefaultMaxWarmupBatches = 10
	// DefaultWarmupStability is the relative change between consecutive warmup
	// batches below which the case is considered warm.
	DefaultWarmupStability = 0.02
	// DefaultMeasuredBatches is the number of samples recorded per case.
	DefaultMeasuredBatches = 15
	// DefaultCalibrationTimeout bounds the pilot phase of a single case.
	DefaultCalibrationTimeout = 30 * time.Second
	// DefaultRetryBudget is the number of panicking batches tolerated per case.
	DefaultRetryBudget = 1
)

// Options controls a run. Zero values select the defaults above, except
// MaxWarmupBatches and RetryBudget, where a negative value means zero.
type Options struct {
	MinBatchDuration   time.Duration `json:"minBatchDuration"`
	MaxBatchIterations uint64        `json:"maxBatchIterations"`
	MaxWarmupBatches   int           `json:"maxWarmupBatches"`
	WarmupStability    float64       `json:"warmupStability"`
	MeasuredBatches    int           `json:"measuredBatches"`
	OutlierFence       float64       `json:"outlierFence"`
	CalibrationTimeout time.Duration `json:"calibrationTimeout"`
	RunTimeout         time.Duration `json:"runTimeout,omitempty"`
	RetryBudget        int           `json:"retryBudget"`
	Confidence         float64       `json:"confidence"`
}

// DefaultOptions returns Options with every field set to its default.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MinBatchDuration <= 0 {
		o.MinBatchDuration = DefaultMinBatchDuration
	}
	if o.MaxBatchIterations == 0 {
		o.MaxBatchIterations = DefaultMaxBatchIterations
	}
	switch {
	case o.MaxWarmupBatches == 0:
		o.MaxWarmupBatches = DefaultMaxWarmupBatches
	case o.MaxWarmupBatches < 0:
		o.MaxWarmupBatches = 0
	}
	if o.WarmupStability <= 0 {
		o.WarmupStability = DefaultWarmupStability
	}
	if o.MeasuredBatches <= 0 {
		o.MeasuredBatches = DefaultMeasuredBatches
	}
	if o.OutlierFence == 0 {
		o.OutlierFence = metrics.DefaultFence
	}
	if o.CalibrationTimeout <= 0 {
		o.CalibrationTimeout = DefaultCalibrationTimeout
	}
	if o.RunTimeout < 0 {
		o.RunTimeout = 0
	}
	switch {
	case o.RetryBudget == 0:
		o.RetryBudget = DefaultRetryBudget
	case o.RetryBudget < 0:
		o.RetryBudget = 0
	}
	if o.Confidence <= 0 || o.Confidence >= 1 {
		o.Confidence = metrics.DefaultConfidence
	}
	return o
}

// internal/metrics/types.go
package metrics

import "time"

// Sample is one measured batch: Iterations consecutive calls timed as a unit.
type Sample struct {
	Iterations     uint64        `json:"iterations"`
	Elapsed        time.Duration `json:"elapsedNanos"`
	BytesAllocated int64         `json:"bytesAllocated"`
	Allocs         int64         `json:"allocs"`
}

// NsPerOp returns the per-operation duration of the batch in nanoseconds.
func (s Sample) NsPerOp() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.Elapsed.Nanoseconds()) / float64(s.Iterations)
}

// BytesPerOp returns the per-operation heap allocation of the batch.
func (s Sample) BytesPerOp() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.BytesAllocated) / float64(s.Iterations)
}

// AllocsPerOp returns the per-operation allocation count of the batch.
func (s Sample) AllocsPerOp() float64 {
	if s.Iterations == 0 {
		return 0
	}
	return float64(s.Allocs) / float64(s.Iterations)
}

// Summary is the aggregate of a sequence of samples after outlier handling.
// It is derived data: recompute it from the samples instead of editing it.
type Summary struct {
	MeanNsPerOp     float64 `json:"meanNsPerOp"`
	StdDevNsPerOp   float64 `json:"stddevNsPerOp"`
	MinNsPerOp      float64 `json:"minNsPerOp"`
	MaxNsPerOp      float64 `json:"maxNsPerOp"`
	MedianNsPerOp   float64 `json:"medianNsPerOp"`
	ErrorNsPerOp    float64 `json:"errorNsPerOp"`
	Confidence      float64 `json:"confidence"`
	MeanBytesPerOp  float64 `json:"meanBytesPerOp"`
	MeanAllocsPerOp float64 `json:"meanAllocsPerOp"`
	SampleCount     int     `json:"sampleCount"`
	Retained        int     `json:"retained"`
	OutliersRemoved int     `json:"outliersRemoved"`
	HighVariance    bool    `json:"highVariance"`
}

// Comparison is the result of testing one set of samples against a baseline.
type Comparison struct {
	Ratio float64 `json:"ratio"`
	P     float64 `json:"p"`
	Alpha float64 `json:"alpha"`
}

// Significant reports whether the difference passed the significance threshold.
func (c Comparison) Significant() bool {
	return c.P < c.Alpha
}

// RunningStat holds the necessary values for online calculation of mean, variance, and stddev.
type RunningStat struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"-"` // Sum of squares of differences from the current mean
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// internal/metrics/summary.go
package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/perf/benchmath"
)

const (
	// DefaultFence is the Tukey fence multiplier applied to the interquartile range.
	DefaultFence = 1.5
	// DefaultConfidence is the confidence level of the reported error margin.
	DefaultConfidence = 0.95
	// minFenceSamples is the smallest sample count for which quartiles are meaningful.
	minFenceSamples = 4
)

// Summarize reduces per-batch samples to per-operation summary statistics.
//
// Samples whose per-operation duration lies more than fence interquartile
// ranges from the median are dropped before the statistics are computed. When
// that would drop more than half of the samples, every sample is kept and the
// result is flagged HighVariance. A fence <= 0 disables outlier removal.
//
// Summarize does not modify samples and returns identical results for identical
// input.
func Summarize(samples []Sample, fence, confidence float64) Summary {
	summary := Summary{SampleCount: len(samples), Confidence: confidence}
	if len(samples) == 0 {
		return summary
	}

	kept := filterOutliers(samples, fence)
	if 2*(len(samples)-len(kept)) > len(samples) {
		kept = samples
		summary.HighVariance = true
	}
	summary.Retained = len(kept)
	summary.OutliersRemoved = len(samples) - len(kept)

	ns := make(stats.Float64Data, len(kept))
	bytesPerOp := make(stats.Float64Data, len(kept))
	allocsPerOp := make(stats.Float64Data, len(kept))
	for i, s := range kept {
		ns[i] = s.NsPerOp()
		bytesPerOp[i] = s.BytesPerOp()
		allocsPerOp[i] = s.AllocsPerOp()
	}

	summary.MeanNsPerOp, _ = stats.Mean(ns)
	summary.MedianNsPerOp, _ = stats.Median(ns)
	summary.MinNsPerOp, _ = stats.Min(ns)
	summary.MaxNsPerOp, _ = stats.Max(ns)
	summary.MeanBytesPerOp, _ = stats.Mean(bytesPerOp)
	summary.MeanAllocsPerOp, _ = stats.Mean(allocsPerOp)
	if len(ns) > 1 {
		summary.StdDevNsPerOp, _ = stats.StandardDeviationSample(ns)
		summary.ErrorNsPerOp = errorMargin(ns, confidence)
	}
	return summary
}

// NsPerOp returns the per-operation durations of the samples in order.
func NsPerOp(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.NsPerOp()
	}
	return out
}

// Compare tests candidate against baseline per-operation durations with a
// Mann-Whitney U test and reports the ratio of the candidate mean to the
// baseline mean. The ratio is zero when the baseline mean is not positive.
func Compare(baseline, candidate []float64, baselineMean, candidateMean float64) Comparison {
	cmp := Comparison{P: 1, Alpha: benchmath.DefaultThresholds.CompareAlpha}
	if baselineMean > 0 {
		cmp.Ratio = candidateMean / baselineMean
	}
	if len(baseline) == 0 || len(candidate) == 0 {
		return cmp
	}
	a := benchmath.NewSample(append([]float64(nil), baseline...), &benchmath.DefaultThresholds)
	b := benchmath.NewSample(append([]float64(nil), candidate...), &benchmath.DefaultThresholds)
	res := benchmath.AssumeNothing.Compare(a, b)
	if !math.IsNaN(res.P) {
		cmp.P = res.P
	}
	cmp.Alpha = res.Alpha
	return cmp
}

func filterOutliers(samples []Sample, fence float64) []Sample {
	if fence <= 0 || len(samples) < minFenceSamples {
		return samples
	}
	ns := stats.Float64Data(NsPerOp(samples))
	q, err := stats.Quartile(ns)
	if err != nil {
		return samples
	}
	median, err := stats.Median(ns)
	if err != nil {
		return samples
	}
	limit := fence * (q.Q3 - q.Q1)
	lo, hi := median-limit, median+limit

	kept := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if v := s.NsPerOp(); v >= lo && v <= hi {
			kept = append(kept, s)
		}
	}
	return kept
}

// errorMargin is the half-width of the t-based confidence interval of the mean.
func errorMargin(values []float64, confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}
	sample := benchmath.NewSample(append([]float64(nil), values...), &benchmath.DefaultThresholds)
	s := benchmath.AssumeNormal.Summary(sample, confidence)
	margin := (s.Hi - s.Lo) / 2
	if math.IsNaN(margin) || math.IsInf(margin, 0) {
		return 0
	}
	return margin
}

// internal/metrics/aggregator.go
package metrics

import "math"

// Update adds a value to the running statistic using Welford's online algorithm.
func (rs *RunningStat) Update(value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// Variance returns the sample variance of the values seen so far.
func (rs RunningStat) Variance() float64 {
	if rs.Count < 2 {
		return 0
	}
	return rs.M2 / float64(rs.Count-1)
}

// StdDev returns the sample standard deviation of the values seen so far.
func (rs RunningStat) StdDev() float64 {
	return math.Sqrt(rs.Variance())
}

// RelativeChange returns |cur-prev|/prev, or +Inf when prev is zero and cur is not.
func RelativeChange(prev, cur float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(cur-prev) / prev
}

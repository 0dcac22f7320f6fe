package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/mwiater/hashbench/internal/benchmark"
)

var csvHeader = []string{"name", "status", "reason", "mean_ns_per_op", "error_ns_per_op", "stddev_ns_per_op",
	"median_ns_per_op", "min_ns_per_op", "max_ns_per_op", "bytes_per_op", "allocs_per_op",
	"retained_samples", "samples", "outliers_removed", "high_variance", "iterations_per_batch", "ratio"}

// WriteCSV renders r as CSV with raw, unit-less numbers.
func WriteCSV(w io.Writer, r *benchmark.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range r.Entries {
		e := &r.Entries[i]
		rec := make([]string, len(csvHeader))
		rec[0], rec[1], rec[2] = e.Name, string(e.Status), e.Reason
		if s := e.Summary; s != nil {
			rec[3] = ftoa(s.MeanNsPerOp)
			rec[4] = ftoa(s.ErrorNsPerOp)
			rec[5] = ftoa(s.StdDevNsPerOp)
			rec[6] = ftoa(s.MedianNsPerOp)
			rec[7] = ftoa(s.MinNsPerOp)
			rec[8] = ftoa(s.MaxNsPerOp)
			if e.MemoryAvailable {
				rec[9] = ftoa(s.MeanBytesPerOp)
				rec[10] = ftoa(s.MeanAllocsPerOp)
			}
			rec[11] = strconv.Itoa(s.Retained)
			rec[12] = strconv.Itoa(s.SampleCount)
			rec[13] = strconv.Itoa(s.OutliersRemoved)
			rec[14] = strconv.FormatBool(s.HighVariance)
		}
		if e.Plan != nil {
			rec[15] = strconv.FormatUint(e.Plan.IterationsPerBatch, 10)
		}
		if e.Comparison != nil {
			rec[16] = ftoa(e.Comparison.Ratio)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

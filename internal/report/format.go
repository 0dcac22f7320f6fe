// Package report renders a benchmark.Report for people and tools.
package report

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/mwiater/hashbench/internal/benchmark"
)

// Row is the flattened, display-ready form of one entry.
type Row struct {
	Name      string
	Status    string
	Mean      string
	Error     string
	StdDev    string
	Median    string
	Ratio     string
	Allocated string
	Allocs    string
	Samples   string
	Note      string
}

// Rows flattens the entries of r in registration order.
func Rows(r *benchmark.Report) []Row {
	rows := make([]Row, 0, len(r.Entries))
	for i := range r.Entries {
		rows = append(rows, rowFor(&r.Entries[i]))
	}
	return rows
}

func rowFor(e *benchmark.Entry) Row {
	row := Row{Name: e.Name, Status: string(e.Status), Mean: "-", Error: "-", StdDev: "-",
		Median: "-", Ratio: "-", Allocated: "-", Allocs: "-", Samples: "-"}
	if e.Baseline {
		row.Name += " (baseline)"
	}

	var notes []string
	if e.Status != benchmark.StatusOK {
		notes = append(notes, e.Reason)
		if e.Error != "" {
			notes = append(notes, e.Error)
		}
	}
	if e.OperationAbandoned {
		notes = append(notes, "operation may still be running")
	}
	if e.TeardownError != "" {
		notes = append(notes, e.TeardownError)
	}

	if s := e.Summary; s != nil {
		row.Mean = FormatNanos(s.MeanNsPerOp)
		row.Error = FormatNanos(s.ErrorNsPerOp)
		row.StdDev = FormatNanos(s.StdDevNsPerOp)
		row.Median = FormatNanos(s.MedianNsPerOp)
		row.Samples = fmt.Sprintf("%d/%d", s.Retained, s.SampleCount)
		if e.MemoryAvailable {
			row.Allocated = FormatBytes(s.MeanBytesPerOp)
			row.Allocs = fmt.Sprintf("%.2f", s.MeanAllocsPerOp)
		} else {
			notes = append(notes, "memory: unavailable")
		}
		if s.HighVariance {
			notes = append(notes, "high variance")
		}
		if s.OutliersRemoved > 0 {
			notes = append(notes, fmt.Sprintf("%d outlier(s) removed", s.OutliersRemoved))
		}
	}
	if c := e.Comparison; c != nil && c.Ratio > 0 {
		row.Ratio = fmt.Sprintf("%.2f", c.Ratio)
		if !e.Baseline && !c.Significant() {
			notes = append(notes, fmt.Sprintf("~ baseline (p=%.3f)", c.P))
		}
	}
	row.Note = strings.Join(notes, "; ")
	return row
}

// FormatNanos renders a nanosecond quantity with a unit suited to its magnitude.
func FormatNanos(ns float64) string {
	abs := math.Abs(ns)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.3f s", ns/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.3f ms", ns/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.3f μs", ns/1e3)
	default:
		return fmt.Sprintf("%.3f ns", ns)
	}
}

// FormatBytes renders a byte quantity in B, KB or MB.
func FormatBytes(b float64) string {
	abs := math.Abs(b)
	switch {
	case abs >= 1<<20:
		return fmt.Sprintf("%.2f MB", b/(1<<20))
	case abs >= 1<<10:
		return fmt.Sprintf("%.2f KB", b/(1<<10))
	default:
		return fmt.Sprintf("%.0f B", b)
	}
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string into a "slug" format,
// including replacing colons (:) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "_")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")

	return s
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/hashbench/internal/benchmark"
)

// WriteMarkdown renders r as a GitHub-flavoured Markdown table.
func WriteMarkdown(w io.Writer, r *benchmark.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## Benchmark run %s\n\n", r.RunID)
	fmt.Fprintf(&b, "%s %s/%s, %d CPU, min batch %s, %d measured batches\n\n",
		r.GoVersion, r.GOOS, r.GOARCH, r.NumCPU, r.Options.MinBatchDuration, r.Options.MeasuredBatches)

	b.WriteString("| " + strings.Join(tableHeader, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(tableHeader)) + "\n")
	for _, row := range Rows(r) {
		cells := []string{row.Name, row.Status, row.Mean, row.Error, row.StdDev, row.Median,
			row.Ratio, row.Allocated, row.Allocs, row.Samples, row.Note}
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "> **Warning:** %s\n", warning)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

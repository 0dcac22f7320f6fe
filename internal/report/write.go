package report

import (
	"fmt"
	"io"

	"github.com/mwiater/hashbench/internal/benchmark"
)

// Write renders r in the named format: table, markdown, csv or json.
func Write(w io.Writer, format string, r *benchmark.Report) error {
	switch format {
	case "", "table":
		return WriteTable(w, r)
	case "markdown", "md":
		return WriteMarkdown(w, r)
	case "csv":
		return WriteCSV(w, r)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

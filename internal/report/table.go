package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mwiater/hashbench/internal/benchmark"
)

var tableHeader = []string{"Method", "Status", "Mean", "Error", "StdDev", "Median", "Ratio", "Allocated", "Allocs/op", "Samples", "Notes"}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	okStatus      = color.New(color.FgGreen).SprintFunc()
	skippedStatus = color.New(color.FgYellow).SprintFunc()
	failedStatus  = color.New(color.FgRed).SprintFunc()
)

// WriteTable renders r as an aligned console table.
func WriteTable(w io.Writer, r *benchmark.Report) error {
	rows := Rows(r)
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{row.Name, row.Status, row.Mean, row.Error, row.StdDev,
			row.Median, row.Ratio, row.Allocated, row.Allocs, row.Samples, row.Note})
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = lipgloss.Width(h)
	}
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s  %s %s/%s, %d CPU", r.RunID, r.GoVersion, r.GOOS, r.GOARCH, r.NumCPU)))
	b.WriteString("\n\n")

	header := make([]string, len(tableHeader))
	rule := make([]string, len(tableHeader))
	for i, h := range tableHeader {
		header[i] = headerStyle.Render(pad(h, widths[i]))
		rule[i] = strings.Repeat("-", widths[i])
	}
	b.WriteString(strings.Join(header, " | "))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Join(rule, "-|-")))
	b.WriteString("\n")

	for _, line := range cells {
		out := make([]string, len(line))
		for i, cell := range line {
			out[i] = pad(cell, widths[i])
		}
		out[1] = colorStatus(line[1], out[1])
		b.WriteString(strings.Join(out, " | "))
		b.WriteString("\n")
	}

	ok, skipped, failed := r.Counts()
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d ok, %d skipped, %d failed in %s",
		ok, skipped, failed, r.FinishedAt.Sub(r.StartedAt).Round(1e6))))
	b.WriteString("\n")
	for _, warning := range r.Warnings {
		b.WriteString(skippedStatus("warning: " + warning))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func colorStatus(status, padded string) string {
	switch benchmark.Status(status) {
	case benchmark.StatusOK:
		return okStatus(padded)
	case benchmark.StatusSkipped:
		return skippedStatus(padded)
	default:
		return failedStatus(padded)
	}
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// internal/tui/progress.go
// Package tui shows live progress of a benchmark run in the terminal.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/hashbench/internal/benchmark"
	"github.com/mwiater/hashbench/internal/report"
)

// eventMsg carries a runner event into the Bubble Tea loop.
type eventMsg benchmark.Event

// runDoneMsg signals that the run has returned.
type runDoneMsg struct{}

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// model is the Bubble Tea model of the progress view. It has no animation and
// only changes on runner events, which arrive at case boundaries, so nothing
// is rendered while a batch is being timed.
type model struct {
	progress   progress.Model
	total      int
	done       int
	current    string
	lines      []string
	cancel     context.CancelFunc
	cancelling bool
}

func newModel(total int, cancel context.CancelFunc) *model {
	return &model{
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total:    total,
		cancel:   cancel,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

// Update handles runner events and key presses. Quitting is only possible once
// the run has returned; ctrl+c requests cancellation, which the runner
// observes at the next batch boundary.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil
	case eventMsg:
		m.handleEvent(benchmark.Event(msg))
		return m, nil
	case runDoneMsg:
		m.current = ""
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleEvent(ev benchmark.Event) {
	switch ev.Kind {
	case benchmark.EventCaseStarted:
		m.current = ev.Case
	case benchmark.EventCaseFinished:
		m.done++
		m.current = ""
		if ev.Entry != nil {
			m.lines = append(m.lines, formatEntry(ev.Entry))
		}
	}
}

func formatEntry(e *benchmark.Entry) string {
	switch e.Status {
	case benchmark.StatusOK:
		mean := "-"
		if e.Summary != nil {
			mean = report.FormatNanos(e.Summary.MeanNsPerOp) + "/op"
		}
		return okStyle.Render("✓") + fmt.Sprintf(" %s  %s", e.Name, mean)
	case benchmark.StatusSkipped:
		return skippedStyle.Render("○") + fmt.Sprintf(" %s  %s", e.Name, e.Reason)
	default:
		return failedStyle.Render("✗") + fmt.Sprintf(" %s  %s", e.Name, e.Error)
	}
}

func (m *model) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

// View renders finished cases, the case in progress and the overall progress bar.
func (m *model) View() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range m.lines {
		b.WriteString("  " + line + "\n")
	}
	if m.current != "" {
		fmt.Fprintf(&b, "  %s measuring %s...\n", currentStyle.Render("▸"), m.current)
	}
	fmt.Fprintf(&b, "\n  %s %d/%d\n", m.progress.ViewAs(m.percent()), m.done, m.total)
	if m.cancelling {
		b.WriteString(helpStyle.Render("  cancelling after the current batch...") + "\n")
	} else {
		b.WriteString(helpStyle.Render("  ctrl+c: cancel run") + "\n")
	}
	return b.String()
}

// Work performs a run, sending progress to observer.
type Work func(observer benchmark.Observer) (*benchmark.Report, error)

// Run executes work while rendering its progress to out. The run itself stays
// on a single goroutine; the view only receives events at case boundaries.
func Run(out io.Writer, total int, cancel context.CancelFunc, work Work) (*benchmark.Report, error) {
	p := tea.NewProgram(newModel(total, cancel), tea.WithOutput(out), tea.WithFPS(1))

	var (
		rep    *benchmark.Report
		runErr error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		rep, runErr = work(func(ev benchmark.Event) {
			if ev.Entry != nil {
				entry := *ev.Entry
				ev.Entry = &entry
			}
			p.Send(eventMsg(ev))
		})
		p.Send(runDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		if cancel != nil {
			cancel()
		}
		<-finished
		return rep, fmt.Errorf("progress view: %w", err)
	}
	<-finished
	return rep, runErr
}

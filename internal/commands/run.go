// internal/commands/run.go
package hashbench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mwiater/hashbench/internal/appconfig"
	"github.com/mwiater/hashbench/internal/benchmark"
	"github.com/mwiater/hashbench/internal/hashcases"
	"github.com/mwiater/hashbench/internal/logging"
	"github.com/mwiater/hashbench/internal/report"
	"github.com/mwiater/hashbench/internal/tui"
	"github.com/spf13/cobra"
)

// errCasesFailed is returned when at least one case failed without samples.
var errCasesFailed = errors.New("one or more benchmarks failed")

var bannerStyle = color.New(color.FgCyan, color.Bold).SprintFunc()

// runCmd measures the registered hash functions and prints the report.
var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run the hash benchmarks and print the results",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration is not initialized")
		}
		return runBenchmarks(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// buildRegistry generates the pinned input and registers the selected cases.
func buildRegistry(cfg *appconfig.Config) (*benchmark.Registry, error) {
	input := hashcases.Input(cfg.InputSeed(), cfg.InputLength())
	reg := benchmark.NewRegistry()
	if err := hashcases.Register(reg, input, cfg.Baseline); err != nil {
		return nil, err
	}
	selected, err := reg.Filter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	if selected.Len() == 0 {
		return nil, fmt.Errorf("no benchmarks match filter %q", cfg.Filter)
	}
	return selected, nil
}

func runBenchmarks(ctx context.Context, stdout, stderr io.Writer, cfg *appconfig.Config) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ropts := []benchmark.RunnerOption{}
	if !cfg.MemoryEnabled() {
		ropts = append(ropts, benchmark.WithProbe(benchmark.NullProbe{}))
	}
	work := func(observer benchmark.Observer) (*benchmark.Report, error) {
		runner := benchmark.NewRunner(opts, append(ropts, benchmark.WithObserver(observer))...)
		return runner.Run(ctx, reg)
	}

	format := cfg.OutputFormat()
	if format == appconfig.FormatTable && cfg.Output == "" && !cfg.TUI {
		fmt.Fprintln(stdout, bannerStyle("=== hashbench ==="))
		fmt.Fprintf(stdout, "Running %d benchmark(s)...\n\n", reg.Len())
	}

	var (
		rep    *benchmark.Report
		runErr error
	)
	if cfg.TUI {
		rep, runErr = tui.Run(stderr, reg.Len(), cancel, work)
	} else {
		rep, runErr = work(logProgress)
	}
	if rep == nil {
		return runErr
	}

	if err := writeReport(stdout, cfg, format, rep); err != nil {
		return err
	}
	if cfg.SaveResults {
		if _, err := report.WriteResults(cfg.ResultsDirectory(), rep); err != nil {
			return err
		}
	}
	if cfg.PromFile != "" {
		if err := report.WritePromFile(cfg.PromFile, rep); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if rep.ExitCode() != 0 {
		return errCasesFailed
	}
	return nil
}

func writeReport(stdout io.Writer, cfg *appconfig.Config, format string, rep *benchmark.Report) error {
	if cfg.Output == "" {
		return report.Write(stdout, format, rep)
	}
	file, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer file.Close()
	if err := report.Write(file, format, rep); err != nil {
		return fmt.Errorf("error writing report file: %w", err)
	}
	logging.LogEvent("Report written to %s", cfg.Output)
	return nil
}

// logProgress records case boundaries in the log.
func logProgress(ev benchmark.Event) {
	switch ev.Kind {
	case benchmark.EventCaseStarted:
		logging.LogEvent("[%d/%d] %s", ev.Index+1, ev.Total, ev.Case)
	case benchmark.EventCaseFinished:
		if ev.Entry != nil {
			logging.LogEvent("[%d/%d] %s: %s", ev.Index+1, ev.Total, ev.Case, ev.Entry.Status)
		}
	}
}

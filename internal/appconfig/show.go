package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration and the harness options it resolves to.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &Config{}
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Profile:         %s\n", valueOr(cfg.Profile, string(ProfileDefault)))
	fmt.Fprintf(out, "  Format:          %s\n", cfg.OutputFormat())
	fmt.Fprintf(out, "  Input:           %d chars, seed %d\n", cfg.InputLength(), cfg.InputSeed())
	fmt.Fprintf(out, "  Memory:          %v\n", cfg.MemoryEnabled())
	fmt.Fprintf(out, "  Filter:          %s\n", valueOr(cfg.Filter, "(all)"))
	fmt.Fprintf(out, "  Baseline:        %s\n", valueOr(cfg.Baseline, "(none)"))
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Results Dir:     %s\n", cfg.ResultsDirectory())

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(out, "\nOptions: %v\n", err)
		return
	}
	fmt.Fprintln(out, "\nHarness options:")
	pp.Fprintln(out, opts)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

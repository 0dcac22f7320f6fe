// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/hashbench/internal/benchmark"
	"github.com/mwiater/hashbench/internal/hashcases"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoad verifies that a valid configuration file is loaded and that
// settings left out fall back to their defaults.
func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
        "profile": "short",
        "measuredBatches": 7,
        "minBatchDuration": "40ms",
        "baseline": "MD5Hash",
        "format": "markdown",
        "memoryDiagnoser": false,
        "saveResults": true,
        "tui": false,
        "debug": true
    }`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("expected ConfigPath %q, got %q", path, cfg.ConfigPath)
	}
	if cfg.OutputFormat() != FormatMarkdown {
		t.Fatalf("expected markdown format, got %q", cfg.OutputFormat())
	}
	if cfg.MemoryEnabled() {
		t.Fatal("expected memory diagnoser to be disabled")
	}
	if cfg.InputSeed() != hashcases.DefaultSeed || cfg.InputLength() != hashcases.DefaultSize {
		t.Fatalf("expected default input, got seed=%d size=%d", cfg.InputSeed(), cfg.InputLength())
	}
	if cfg.LogFilePath() != defaultLogFile {
		t.Fatalf("expected default log file, got %q", cfg.LogFilePath())
	}
	if cfg.ResultsDirectory() != defaultResultsDir {
		t.Fatalf("expected default results dir, got %q", cfg.ResultsDirectory())
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() failed: %v", err)
	}
	if opts.MeasuredBatches != 7 {
		t.Fatalf("expected measured batches from config, got %d", opts.MeasuredBatches)
	}
	if opts.MinBatchDuration != 40*time.Millisecond {
		t.Fatalf("expected min batch from config, got %v", opts.MinBatchDuration)
	}
	if opts.MaxWarmupBatches != ShortRunOptions().MaxWarmupBatches {
		t.Fatalf("expected warmup cap from short profile, got %d", opts.MaxWarmupBatches)
	}
}

// TestLoadRejectsInvalidDocuments covers unreadable, malformed and
// schema-violating configuration files.
func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed json", body: `{"profile": `, want: "invalid config file"},
		{name: "unknown key", body: `{"hosts": []}`, want: "JSON validation failed"},
		{name: "bad profile", body: `{"profile": "forever"}`, want: "JSON validation failed"},
		{name: "bad format", body: `{"format": "xml"}`, want: "JSON validation failed"},
		{name: "confidence out of range", body: `{"confidence": 1.5}`, want: "JSON validation failed"},
		{name: "bad duration", body: `{"minBatchDuration": "soon"}`, want: "invalid minBatchDuration"},
		{name: "negative duration", body: `{"runTimeout": "-1s"}`, want: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "no configuration file") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestOptionsDefaultsWithEmptyConfig(t *testing.T) {
	opts, err := Config{}.Options()
	if err != nil {
		t.Fatalf("Options() failed: %v", err)
	}
	if opts != benchmark.DefaultOptions() {
		t.Fatalf("expected default options, got %+v", opts)
	}
}

func TestOptionsOverrides(t *testing.T) {
	cfg := Config{
		Profile:            "long",
		MaxBatchIterations: 4096,
		MaxWarmupBatches:   -1,
		WarmupStability:    0.05,
		OutlierFence:       3,
		CalibrationTimeout: "2s",
		RunTimeout:         "1m",
		RetryBudget:        3,
		Confidence:         0.9,
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() failed: %v", err)
	}
	if opts.MinBatchDuration != LongRunOptions().MinBatchDuration {
		t.Fatalf("expected long profile batch duration, got %v", opts.MinBatchDuration)
	}
	if opts.MaxBatchIterations != 4096 || opts.MaxWarmupBatches != -1 || opts.WarmupStability != 0.05 {
		t.Fatalf("unexpected batch overrides: %+v", opts)
	}
	if opts.OutlierFence != 3 || opts.RetryBudget != 3 || opts.Confidence != 0.9 {
		t.Fatalf("unexpected statistics overrides: %+v", opts)
	}
	if opts.CalibrationTimeout != 2*time.Second || opts.RunTimeout != time.Minute {
		t.Fatalf("unexpected timeouts: %+v", opts)
	}
}

func TestOptionsForProfile(t *testing.T) {
	for _, name := range ProfileNames() {
		if _, err := OptionsForProfile(strings.ToUpper(" " + name + " ")); err != nil {
			t.Fatalf("profile %q: %v", name, err)
		}
	}
	if _, err := OptionsForProfile("marathon"); err == nil {
		t.Fatal("expected unknown profile error")
	}
	short := ShortRunOptions()
	if short.MeasuredBatches >= benchmark.DefaultMeasuredBatches {
		t.Fatalf("short profile should take fewer samples, got %d", short.MeasuredBatches)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{Format: "JSON"}).Validate(); err != nil {
		t.Fatalf("expected upper-case format to be accepted: %v", err)
	}
	if err := (Config{Format: "yaml"}).Validate(); err == nil {
		t.Fatal("expected invalid format error")
	}
	if err := (Config{Confidence: 1}).Validate(); err == nil {
		t.Fatal("expected invalid confidence error")
	}
	if err := (Config{Profile: "nope"}).Validate(); err == nil {
		t.Fatal("expected invalid profile error")
	}
}

func TestShowConfig(t *testing.T) {
	var buf bytes.Buffer
	ShowConfig(&buf, "", &Config{Baseline: hashcases.SHA256Hash})
	out := buf.String()
	for _, want := range []string{"No config file loaded", "Baseline:        SHA256Hash", "Harness options:", "MeasuredBatches"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

// TestLoadYAML verifies YAML files go through the same schema as JSON files.
func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "profile: long\nmeasuredBatches: 4\nbaseline: SHA256Hash\nsaveResults: true\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with yaml config failed: %v", err)
	}
	if cfg.Profile != "long" || cfg.MeasuredBatches != 4 || cfg.Baseline != "SHA256Hash" || !cfg.SaveResults {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("hosts: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "JSON validation failed") {
		t.Fatalf("expected schema error for yaml, got %v", err)
	}
}

func TestDocumentJSON(t *testing.T) {
	raw := []byte(`{"tui": true}`)
	out, err := DocumentJSON("config.json", raw)
	if err != nil || string(out) != string(raw) {
		t.Fatalf("expected JSON passthrough, got %q (%v)", out, err)
	}

	out, err = DocumentJSON("config.yml", []byte(""))
	if err != nil || string(out) != "{}" {
		t.Fatalf("expected empty object for empty yaml, got %q (%v)", out, err)
	}

	if _, err := DocumentJSON("config.yaml", []byte("a: [")); err == nil {
		t.Fatal("expected yaml parse error")
	}
}

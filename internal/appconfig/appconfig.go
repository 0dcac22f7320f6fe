// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mwiater/hashbench/internal/benchmark"
	"github.com/mwiater/hashbench/internal/hashcases"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultLogFile is used when the config does not name a log file.
	defaultLogFile = "hashbench.log"
	// defaultResultsDir is where JSON results are written.
	defaultResultsDir = "hashbenchData/results"
)

// Output formats understood by the run command.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Config represents the top-level application configuration.
type Config struct {
	Profile            string  `json:"profile,omitempty"`
	MinBatchDuration   string  `json:"minBatchDuration,omitempty"`
	MaxBatchIterations uint64  `json:"maxBatchIterations,omitempty"`
	MaxWarmupBatches   int     `json:"maxWarmupBatches,omitempty"`
	WarmupStability    float64 `json:"warmupStability,omitempty"`
	MeasuredBatches    int     `json:"measuredBatches,omitempty"`
	OutlierFence       float64 `json:"outlierFence,omitempty"`
	CalibrationTimeout string  `json:"calibrationTimeout,omitempty"`
	RunTimeout         string  `json:"runTimeout,omitempty"`
	RetryBudget        int     `json:"retryBudget,omitempty"`
	Confidence         float64 `json:"confidence,omitempty"`
	MemoryDiagnoser    *bool   `json:"memoryDiagnoser,omitempty"`
	Seed               uint64  `json:"seed,omitempty"`
	InputSize          int     `json:"inputSize,omitempty"`
	Filter             string  `json:"filter,omitempty"`
	Baseline           string  `json:"baseline,omitempty"`
	Format             string  `json:"format,omitempty"`
	Output             string  `json:"output,omitempty"`
	ResultsDir         string  `json:"resultsDir,omitempty"`
	SaveResults        bool    `json:"saveResults"`
	PromFile           string  `json:"promFile,omitempty"`
	TUI                bool    `json:"tui"`
	Debug              bool    `json:"debug"`
	LogFile            string  `json:"logFile,omitempty"`
	ConfigPath         string  `json:"-"`
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// ResultsDirectory returns the directory JSON results are written to.
func (c Config) ResultsDirectory() string {
	if dir := strings.TrimSpace(c.ResultsDir); dir != "" {
		return dir
	}
	return defaultResultsDir
}

// OutputFormat returns the normalized output format, defaulting to a console table.
func (c Config) OutputFormat() string {
	if f := strings.ToLower(strings.TrimSpace(c.Format)); f != "" {
		return f
	}
	return FormatTable
}

// InputSeed returns the seed of the input generator. Zero selects the default seed.
func (c Config) InputSeed() uint64 {
	if c.Seed == 0 {
		return hashcases.DefaultSeed
	}
	return c.Seed
}

// InputLength returns the length of the generated input.
func (c Config) InputLength() int {
	if c.InputSize <= 0 {
		return hashcases.DefaultSize
	}
	return c.InputSize
}

// MemoryEnabled reports whether per-batch allocation counters are collected.
func (c Config) MemoryEnabled() bool {
	return c.MemoryDiagnoser == nil || *c.MemoryDiagnoser
}

// Options converts the configuration into harness options. Settings left
// unset fall back to the selected profile, then to the harness defaults.
func (c Config) Options() (benchmark.Options, error) {
	opts, err := OptionsForProfile(c.Profile)
	if err != nil {
		return benchmark.Options{}, err
	}

	if d, err := parseDuration("minBatchDuration", c.MinBatchDuration); err != nil {
		return benchmark.Options{}, err
	} else if d > 0 {
		opts.MinBatchDuration = d
	}
	if d, err := parseDuration("calibrationTimeout", c.CalibrationTimeout); err != nil {
		return benchmark.Options{}, err
	} else if d > 0 {
		opts.CalibrationTimeout = d
	}
	if d, err := parseDuration("runTimeout", c.RunTimeout); err != nil {
		return benchmark.Options{}, err
	} else if d > 0 {
		opts.RunTimeout = d
	}

	if c.MaxBatchIterations > 0 {
		opts.MaxBatchIterations = c.MaxBatchIterations
	}
	if c.MaxWarmupBatches != 0 {
		opts.MaxWarmupBatches = c.MaxWarmupBatches
	}
	if c.WarmupStability > 0 {
		opts.WarmupStability = c.WarmupStability
	}
	if c.MeasuredBatches > 0 {
		opts.MeasuredBatches = c.MeasuredBatches
	}
	if c.OutlierFence != 0 {
		opts.OutlierFence = c.OutlierFence
	}
	if c.RetryBudget != 0 {
		opts.RetryBudget = c.RetryBudget
	}
	if c.Confidence > 0 {
		opts.Confidence = c.Confidence
	}
	return opts, nil
}

// Validate checks values that the JSON schema cannot express.
func (c Config) Validate() error {
	switch c.OutputFormat() {
	case FormatTable, FormatMarkdown, FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (want table, markdown, csv or json)", c.Format)
	}
	if c.Confidence < 0 || c.Confidence >= 1 {
		return fmt.Errorf("invalid confidence %v (want 0 < confidence < 1)", c.Confidence)
	}
	_, err := c.Options()
	return err
}

func parseDuration(key, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, value)
	}
	return d, nil
}

// Load reads the application configuration from the specified path and
// validates it against the configuration schema.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	data, err = DocumentJSON(path, data)
	if err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	if err := ValidateDocument(data); err != nil {
		return Config{}, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	var config Config
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

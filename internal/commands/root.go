// internal/commands/root.go
package hashbench

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwiater/hashbench/internal/appconfig"
	"github.com/mwiater/hashbench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hashbench",
	Short: "hashbench: micro-benchmarks for hash functions with calibrated batches and outlier-aware statistics",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(cmd); err != nil {
			return err
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		var console io.Writer
		if cfg.Debug && !cfg.TUI {
			console = cmd.ErrOrStderr()
		}
		if err := logging.Init(currentConfig.LogFilePath(), console); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	flags.Bool("debug", false, "also write log output to stderr")
	flags.String("logFile", "", "path to the log file")
	flags.String("profile", "", "measurement profile: short, default or long")
	flags.String("minBatchDuration", "", "shortest accepted batch duration (e.g. 100ms)")
	flags.Uint64("maxBatchIterations", 0, "cap on iterations per batch (0 = default)")
	flags.Int("maxWarmupBatches", 0, "cap on adaptive warmup batches (0 = default, -1 = none)")
	flags.Float64("warmupStability", 0, "relative batch-to-batch change that ends warmup (0 = default)")
	flags.Int("measuredBatches", 0, "batches recorded per case (0 = default)")
	flags.Float64("outlierFence", 0, "Tukey fence multiplier of the IQR (0 = default, <0 disables)")
	flags.String("calibrationTimeout", "", "time limit for calibrating one case (e.g. 30s)")
	flags.String("runTimeout", "", "time limit for the whole run, checked between cases")
	flags.Int("retryBudget", 0, "panicking batches tolerated per case (0 = default, -1 = none)")
	flags.Float64("confidence", 0, "confidence level of the error margin (0 = default)")
	flags.Bool("memoryDiagnoser", true, "collect heap allocations per batch")
	flags.Uint64("seed", 0, "seed of the input generator (0 = default)")
	flags.Int("inputSize", 0, "length of the generated input (0 = default)")
	flags.String("filter", "", "regular expression selecting cases by name")
	flags.String("baseline", "", "case the others are compared against")
	flags.String("format", "", "output format: table, markdown, csv or json")
	flags.String("output", "", "write the report to this file instead of stdout")
	flags.String("resultsDir", "", "directory for saved JSON results")
	flags.Bool("saveResults", false, "save the JSON report under resultsDir")
	flags.String("promFile", "", "write results in Prometheus textfile format to this path")
	flags.Bool("tui", false, "show a live progress view")

	for _, name := range []string{
		"debug", "logFile", "profile", "minBatchDuration", "maxBatchIterations", "maxWarmupBatches",
		"warmupStability", "measuredBatches", "outlierFence", "calibrationTimeout", "runTimeout",
		"retryBudget", "confidence", "memoryDiagnoser", "seed", "inputSize", "filter", "baseline",
		"format", "output", "resultsDir", "saveResults", "promFile", "tui",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.SetEnvPrefix("HASHBENCH")
	viper.AutomaticEnv()
}

// ensureConfigLoaded reads the config file, validating JSON and YAML files
// against the config schema. A missing file is only an error when --config was given.
func ensureConfigLoaded(cmd *cobra.Command) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	used := viper.ConfigFileUsed()
	switch strings.ToLower(filepath.Ext(used)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil
	}
	data, err := os.ReadFile(used)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if data, err = appconfig.DocumentJSON(used, data); err != nil {
		return fmt.Errorf("invalid config file %q: %w", used, err)
	}
	if err := appconfig.ValidateDocument(data); err != nil {
		return fmt.Errorf("invalid config file %q: %w", used, err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/alloc"
	"github.com/joshuapare/segalloc/internal/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	preset   string
	logDir   string
	logLevel string
)

// closeLog releases the log file opened by PersistentPreRunE.
var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "segctl",
	Short: "Exercise the segregated free-list allocator",
	Long: `segctl replays allocation traces against the segalloc allocator,
reporting utilization and allocator counters, and checks the consistency
of file-backed regions.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fn, err := logger.Init(logger.Options{
			Enabled: verbose || logDir != "",
			LogDir:  logDir,
			JSON:    jsonOut,
			Level:   logger.ParseLevel(logLevel),
		})
		if err != nil {
			return fmt.Errorf("failed to initialise logging: %w", err)
		}
		closeLog = fn
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&preset, "config", "default", "Allocator configuration: default, coarse or fine")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-file", "", "Write logs to dated files in this directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// configFor maps a --config value to an allocator preset.
func configFor(name string) (*alloc.Config, error) {
	var cfg alloc.Config
	switch strings.ToLower(name) {
	case "", "default":
		cfg = alloc.DefaultConfig
	case "coarse":
		cfg = alloc.ConfigCoarse
	case "fine":
		cfg = alloc.ConfigFine
	default:
		return nil, fmt.Errorf("unknown config %q (want default, coarse or fine)", name)
	}
	cfg.Logger = logger.L
	return &cfg, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

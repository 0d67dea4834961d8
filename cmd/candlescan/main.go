package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"candlescan/internal/config"
	"candlescan/internal/logging"
)

var (
	cfgFile      string
	format       string
	logLevel     string
	workers      int
	minStrength  float64
	presets      []string
	onlyPatterns []string
	providerName string
	validateBars bool
	replayRate   float64
	warmup       int
	gridStep     float64
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "candlescan",
		Short: "Candlestick pattern scanner",
		Long: `Candlescan classifies OHLCV bars into candlestick patterns.

Commands:
  scan      - Scan one or more series files in parallel
  replay    - Feed a series bar by bar and report patterns as they complete
  patterns  - List the built-in patterns and their parameters

Examples:
  candlescan scan data/AAPL.yaml data/MSFT.json --min-strength 0.6
  candlescan replay data/AAPL.yaml --rate 10 --warmup 20
  candlescan patterns`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "candlescan.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "output format: table, json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "show detailed output")

	scanCmd := &cobra.Command{
		Use:   "scan [files...]",
		Short: "Scan series files for candlestick patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScan,
	}
	addEngineFlags(scanCmd)
	scanCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (overrides config)")

	replayCmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a series bar by bar",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	addEngineFlags(replayCmd)
	replayCmd.Flags().Float64Var(&replayRate, "rate", 0, "bars per second (overrides config, 0 keeps config)")
	replayCmd.Flags().IntVar(&warmup, "warmup", 0, "bars to push without pacing before replay starts")

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "List built-in patterns",
		Args:  cobra.NoArgs,
		RunE:  runPatterns,
	}

	patternsCmd.Flags().Float64Var(&gridStep, "grid", 0, "with --verbose, print a parameter grid with this step")

	rootCmd.AddCommand(scanCmd, replayCmd, patternsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&minStrength, "min-strength", 0, "drop matches weaker than this (0-1)")
	cmd.Flags().StringSliceVar(&presets, "preset", nil, "presets to enable: single, two, three, extended, all")
	cmd.Flags().StringSliceVar(&onlyPatterns, "only", nil, "report only these pattern ids")
	cmd.Flags().StringVar(&providerName, "context", "", "context provider: sma, indicator")
	cmd.Flags().BoolVar(&validateBars, "validate", false, "reject series with malformed bars")
}

// loadConfig loads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("min-strength") {
		cfg.Engine.MinStrength = minStrength
	}
	if flags.Changed("preset") {
		cfg.Engine.Presets = presets
		cfg.Engine.Patterns = nil
	}
	if flags.Changed("only") {
		cfg.Engine.Only = onlyPatterns
	}
	if flags.Changed("context") {
		cfg.Context.Provider = providerName
	}
	if flags.Changed("validate") {
		cfg.Engine.ValidateBars = validateBars
	}
	if flags.Lookup("workers") != nil && workers > 0 {
		cfg.Scanner.Workers = workers
	}
	if flags.Lookup("rate") != nil && replayRate > 0 {
		cfg.Replay.BarsPerSecond = replayRate
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if format == "json" {
		cfg.Log.Format = "json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// signalContext cancels on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

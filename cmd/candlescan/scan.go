package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"candlescan/internal/config"
	"candlescan/internal/loader"
	"candlescan/pkg/model"
	"candlescan/pkg/scanner"
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := config.NewEngine[model.Candle](cfg, logger)
	if err != nil {
		return err
	}

	series, err := loader.LoadFiles(args)
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	s := scanner.NewScanner(engine, cfg.Scanner.Workers, cfg.Scanner.Timeout, logger)

	// Setup progress bar
	bar := progressbar.NewOptions(len(series),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	s.SetProgressCallback(func(scanned, total int) {
		bar.Set(scanned)
	})

	report, err := s.Scan(ctx, series)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	result := buildResult(report, series)
	if format == "json" {
		return outputJSON(result)
	}
	return outputTable(result)
}

// buildResult flattens a report into records sorted by symbol then index
func buildResult(report *scanner.Report, series []scanner.Series[model.Candle]) *model.ScanResult {
	bySymbol := make(map[string][]model.Candle, len(series))
	for _, s := range series {
		bySymbol[s.Label] = s.Bars
	}

	result := &model.ScanResult{
		RunID:        report.RunID,
		TotalScanned: len(series),
		Matches:      []model.MatchRecord{},
		ScanTime:     report.Elapsed,
	}
	for label, r := range report.Results {
		for _, m := range r.Matches {
			result.Matches = append(result.Matches, model.NewMatchRecord(label, bySymbol[label], m))
		}
	}
	for label, err := range report.Failures {
		result.Failures = append(result.Failures, model.SeriesFailure{Symbol: label, Error: err.Error()})
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.End < b.End
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Symbol < result.Failures[j].Symbol
	})
	result.MatchingCount = len(result.Matches)
	return result
}

func outputTable(result *model.ScanResult) error {
	if result.MatchingCount == 0 {
		fmt.Println("No patterns found.")
	} else {
		fmt.Printf("Found %d pattern matches:\n\n", result.MatchingCount)

		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Symbol", "Bars", "Time", "Pattern", "Direction", "Strength", "Close"}),
		)
		for _, m := range result.Matches {
			when := "-"
			if m.Time != nil {
				when = m.Time.Format("2006-01-02 15:04")
			}
			table.Append([]string{
				m.Symbol,
				fmt.Sprintf("%d-%d", m.Start, m.End),
				when,
				string(m.Pattern),
				m.Direction.String(),
				fmt.Sprintf("%.2f", m.Strength),
				fmt.Sprintf("%.2f", m.Close),
			})
		}
		table.Render()
	}

	if len(result.Failures) > 0 {
		fmt.Printf("\n%d series failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  [%s] %s\n", f.Symbol, f.Error)
		}
	}

	fmt.Printf("\nScanned %d series in %s\n", result.TotalScanned, result.ScanTime.Round(time.Millisecond))
	return nil
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

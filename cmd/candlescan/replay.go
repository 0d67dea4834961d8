package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"candlescan/internal/config"
	"candlescan/internal/loader"
	"candlescan/internal/ratelimit"
	"candlescan/pkg/model"
	"candlescan/pkg/pattern"
)

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger = logger.With().Str("component", "replay").Logger()

	engine, err := config.NewEngine[model.Candle](cfg, logger)
	if err != nil {
		return err
	}

	series, err := loader.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}
	if err := engine.Check(series.Bars); err != nil {
		return fmt.Errorf("series %s: %w", series.Label, err)
	}

	stream, err := engine.NewStream(pattern.WithHistory(cfg.Replay.History))
	if err != nil {
		return fmt.Errorf("creating stream: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	limiter := ratelimit.NewLimiter("replay", cfg.Replay.BarsPerSecond, cfg.Replay.Burst)
	if warmup > 0 {
		limiter.SetRate(0)
	}

	records := []model.MatchRecord{}
	startTime := time.Now()
	for i, bar := range series.Bars {
		if i == warmup && warmup > 0 {
			limiter.SetRate(cfg.Replay.BarsPerSecond)
			logger.Info().Int("bars", warmup).Msg("Warmup complete")
		}
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(os.Stderr, "Replay interrupted")
				break
			}
			return err
		}

		for _, m := range stream.Push(bar) {
			rec := model.NewMatchRecord(series.Label, series.Bars, m)
			records = append(records, rec)
			if i < warmup {
				continue
			}
			logger.Info().
				Str("pattern", string(m.PatternID)).
				Str("direction", m.Direction.String()).
				Float64("strength", m.Strength.Value()).
				Int("index", m.EndIndex).
				Msg("Pattern completed")
		}
	}

	result := &model.ScanResult{
		TotalScanned:  1,
		MatchingCount: len(records),
		Matches:       records,
		ScanTime:      time.Since(startTime),
	}
	if format == "json" {
		return outputJSON(result)
	}

	fmt.Printf("\nReplayed %d bars of %s, %d matches\n", stream.Len(), series.Label, len(records))
	next := stream.Next()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Trend", "Avg Body", "Avg Range", "Volatility", "Lookback"}),
	)
	table.Append([]string{
		next.Trend.String(),
		fmt.Sprintf("%.4f", next.AvgBody),
		fmt.Sprintf("%.4f", next.AvgRange),
		fmt.Sprintf("%.4f", next.Volatility),
		fmt.Sprintf("%d", next.LookbackUsed),
	})
	table.Render()
	return nil
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"candlescan/pkg/pattern"
)

type paramInfo struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Default     float64 `json:"default"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

type patternInfo struct {
	ID        pattern.PatternID `json:"id"`
	Family    pattern.Family    `json:"family"`
	MinBars   int               `json:"min_bars"`
	Direction string            `json:"direction"`
	Params    []paramInfo       `json:"params"`
}

func catalogInfo() []patternInfo {
	kinds := pattern.Catalog()
	out := make([]patternInfo, 0, len(kinds))
	for _, k := range kinds {
		info := patternInfo{
			ID:        k.ID(),
			Family:    k.Family(),
			MinBars:   k.MinBars(),
			Direction: "either",
		}
		if dir, ok := k.TypicalDirection(); ok {
			info.Direction = dir.String()
		}
		for _, p := range k.Params() {
			info.Params = append(info.Params, paramInfo{
				Name:        p.Name,
				Kind:        p.Kind.String(),
				Default:     p.Default,
				Min:         p.Min,
				Max:         p.Max,
				Description: p.Description,
			})
		}
		out = append(out, info)
	}
	return out
}

func runPatterns(cmd *cobra.Command, args []string) error {
	infos := catalogInfo()
	if format == "json" {
		return outputJSON(infos)
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Pattern", "Family", "Bars", "Direction", "Parameters"}),
	)
	for _, info := range infos {
		params := make([]string, len(info.Params))
		for i, p := range info.Params {
			params[i] = fmt.Sprintf("%s=%g", p.Name, p.Default)
		}
		table.Append([]string{
			string(info.ID),
			string(info.Family),
			fmt.Sprintf("%d", info.MinBars),
			info.Direction,
			strings.Join(params, " "),
		})
	}
	table.Render()

	if verbose {
		fmt.Println("\n--- Parameters ---")
		for _, name := range pattern.ParamNames() {
			meta, _ := pattern.LookupParam(name)
			fmt.Printf("  %-26s %-6s [%g, %g] default %g\n    %s\n",
				meta.Name, meta.Kind, meta.Min, meta.Max, meta.Default, meta.Description)
			if gridStep > 0 {
				fmt.Printf("    grid: %v\n", meta.Grid(gridStep))
			}
		}
	}
	return nil
}

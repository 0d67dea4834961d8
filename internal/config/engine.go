package config

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"candlescan/pkg/pattern"
)

// NewContextProvider builds the provider selected by the context section
func NewContextProvider[B pattern.Bar](c ContextConfig) (pattern.ContextProvider[B], error) {
	base, err := pattern.NewSMAProvider[B](c.Window, c.NearWindow, c.TrendBand)
	if err != nil {
		return nil, err
	}
	if c.Provider != "indicator" {
		return base, nil
	}
	return pattern.NewIndicatorProvider(base, c.IndicatorWindow, c.EMAPeriod, c.ATRPeriod)
}

// NewEngine turns the declarative configuration into builder calls
func NewEngine[B pattern.Bar](cfg *Config, logger zerolog.Logger) (*pattern.Engine[B], error) {
	kinds, err := cfg.Engine.Kinds()
	if err != nil {
		return nil, err
	}
	provider, err := NewContextProvider[B](cfg.Context)
	if err != nil {
		return nil, fmt.Errorf("context provider: %w", err)
	}

	b := pattern.NewBuilder[B]().
		WithLogger(logger).
		WithContextProvider(provider).
		MinStrength(cfg.Engine.MinStrength).
		ValidateBars(cfg.Engine.ValidateBars)

	for _, k := range kinds {
		b.Add(k, settingsFor(cfg.Engine.Overrides[string(k.ID())])...)
	}
	if len(cfg.Engine.Only) > 0 {
		ids := make([]pattern.PatternID, len(cfg.Engine.Only))
		for i, id := range cfg.Engine.Only {
			ids[i] = pattern.PatternID(id)
		}
		b.OnlyPatterns(ids...)
	}

	engine, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return engine, nil
}

func settingsFor(overrides map[string]float64) []pattern.Setting {
	if len(overrides) == 0 {
		return nil
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	settings := make([]pattern.Setting, len(names))
	for i, name := range names {
		settings[i] = pattern.Set(name, overrides[name])
	}
	return settings
}

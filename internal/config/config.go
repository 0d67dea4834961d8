package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"candlescan/pkg/pattern"
)

// Config represents the application configuration
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Context ContextConfig `yaml:"context"`
	Scanner ScannerConfig `yaml:"scanner"`
	Replay  ReplayConfig  `yaml:"replay"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig declares which detectors run and how results are filtered
type EngineConfig struct {
	Presets      []string                      `yaml:"presets"`
	Patterns     []string                      `yaml:"patterns"`  // extra built-ins by id
	Overrides    map[string]map[string]float64 `yaml:"overrides"` // pattern id -> param -> value
	MinStrength  float64                       `yaml:"min_strength"`
	Only         []string                      `yaml:"only"`
	ValidateBars bool                          `yaml:"validate_bars"`
}

// ContextConfig selects and tunes the market context provider
type ContextConfig struct {
	Provider        string  `yaml:"provider"` // sma or indicator
	Window          int     `yaml:"window"`
	NearWindow      int     `yaml:"near_window"`
	TrendBand       float64 `yaml:"trend_band"`
	IndicatorWindow int     `yaml:"indicator_window"`
	EMAPeriod       int     `yaml:"ema_period"`
	ATRPeriod       int     `yaml:"atr_period"`
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReplayConfig paces the replay command
type ReplayConfig struct {
	BarsPerSecond float64 `yaml:"bars_per_second"`
	Burst         int     `yaml:"burst"`
	History       int     `yaml:"history"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Presets: []string{"all"},
		},
		Context: ContextConfig{
			Provider:        "sma",
			Window:          pattern.DefaultContextWindow,
			NearWindow:      pattern.DefaultNearWindow,
			TrendBand:       pattern.DefaultTrendBand,
			IndicatorWindow: 50,
			EMAPeriod:       10,
			ATRPeriod:       14,
		},
		Scanner: ScannerConfig{
			Workers: 8,
			Timeout: 5 * time.Minute,
		},
		Replay: ReplayConfig{
			BarsPerSecond: 4,
			Burst:         1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Use defaults if file doesn't exist
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if level := os.Getenv("CANDLESCAN_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Engine.Presets) == 0 && len(c.Engine.Patterns) == 0 {
		return fmt.Errorf("at least one preset or pattern is required")
	}
	for _, name := range c.Engine.Presets {
		if _, ok := pattern.PresetKinds(name); !ok {
			return fmt.Errorf("unknown preset %q", name)
		}
	}
	for _, id := range c.Engine.Patterns {
		if _, ok := pattern.LookupKind(pattern.PatternID(id)); !ok {
			return fmt.Errorf("unknown pattern %q", id)
		}
	}
	if c.Context.Provider != "sma" && c.Context.Provider != "indicator" {
		return fmt.Errorf("context provider must be sma or indicator, got %q", c.Context.Provider)
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Replay.BarsPerSecond <= 0 {
		return fmt.Errorf("replay bars_per_second must be positive")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Kinds resolves presets and explicit patterns into an ordered, de-duplicated list
func (e *EngineConfig) Kinds() ([]pattern.Kind, error) {
	var kinds []pattern.Kind
	seen := make(map[pattern.Kind]bool)
	add := func(k pattern.Kind) {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	for _, name := range e.Presets {
		preset, ok := pattern.PresetKinds(name)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", name)
		}
		for _, k := range preset {
			add(k)
		}
	}
	for _, id := range e.Patterns {
		k, ok := pattern.LookupKind(pattern.PatternID(id))
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q", id)
		}
		add(k)
	}
	for id := range e.Overrides {
		k, ok := pattern.LookupKind(pattern.PatternID(id))
		if !ok || !seen[k] {
			return nil, fmt.Errorf("override for pattern %q which is not enabled", id)
		}
	}
	return kinds, nil
}

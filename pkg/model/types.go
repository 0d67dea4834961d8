package model

import (
	"time"

	"candlescan/pkg/pattern"
)

// Candle represents a single candlestick (OHLCV data)
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// OHLCV implements pattern.Bar
func (c Candle) OHLCV() (open, high, low, close, volume float64) {
	return c.Open, c.High, c.Low, c.Close, c.Volume
}

// SeriesFile is the on-disk layout of one instrument's bars
type SeriesFile struct {
	Symbol   string   `json:"symbol" yaml:"symbol"`
	Interval string   `json:"interval,omitempty" yaml:"interval,omitempty"`
	Candles  []Candle `json:"candles" yaml:"candles"`
}

// MatchRecord is a match joined with the bar it ends on
type MatchRecord struct {
	Symbol    string            `json:"symbol"`
	Pattern   pattern.PatternID `json:"pattern"`
	Direction pattern.Direction `json:"direction"`
	Strength  float64           `json:"strength"`
	Start     int               `json:"start_index"`
	End       int               `json:"end_index"`
	Time      *time.Time        `json:"time,omitempty"`
	Close     float64           `json:"close"`
}

// NewMatchRecord builds a record for a match found in candles
func NewMatchRecord(symbol string, candles []Candle, m pattern.Match) MatchRecord {
	rec := MatchRecord{
		Symbol:    symbol,
		Pattern:   m.PatternID,
		Direction: m.Direction,
		Strength:  m.Strength.Value(),
		Start:     m.StartIndex,
		End:       m.EndIndex,
	}
	if m.EndIndex >= 0 && m.EndIndex < len(candles) {
		c := candles[m.EndIndex]
		rec.Close = c.Close
		if !c.Time.IsZero() {
			t := c.Time
			rec.Time = &t
		}
	}
	return rec
}

// SeriesFailure describes a series that could not be scanned
type SeriesFailure struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// ScanResult represents the final scan output
type ScanResult struct {
	RunID         string          `json:"run_id"`
	TotalScanned  int             `json:"total_scanned"`
	MatchingCount int             `json:"matching_count"`
	Matches       []MatchRecord   `json:"matches"`
	Failures      []SeriesFailure `json:"failures,omitempty"`
	ScanTime      time.Duration   `json:"scan_time"`
}

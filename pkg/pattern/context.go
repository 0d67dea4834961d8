package pattern

import (
	"math"
)

const (
	DefaultContextWindow = 14
	DefaultNearWindow    = 5
	DefaultTrendBand     = 0.002
)

// ContextProvider computes the per-index market context.
// ComputeAt(bars, i) must equal ComputeAll(bars)[i], and neither may read bars[i] or later.
// ComputeAt accepts i == len(bars).
type ContextProvider[B Bar] interface {
	ComputeAll(bars []B) []MarketContext
	ComputeAt(bars []B, index int) MarketContext
	// Lookback is the number of preceding bars a context depends on
	Lookback() int
}

// SMAProvider classifies trend and averages bar geometry with simple
// moving averages over a trailing window that ends one bar before the index.
type SMAProvider[B Bar] struct {
	window     int
	nearWindow int
	band       float64
}

// NewSMAProvider creates a provider with the given windows and trend band.
// band is the relative distance from the close SMA treated as sideways.
func NewSMAProvider[B Bar](window, nearWindow int, band float64) (*SMAProvider[B], error) {
	if window < 1 {
		return nil, &ValidationError{Field: "context.window", Value: float64(window), Reason: "must be at least 1"}
	}
	if nearWindow < 1 || nearWindow > window {
		return nil, &ValidationError{Field: "context.near_window", Value: float64(nearWindow), Reason: "must be within [1, window]"}
	}
	if _, err := NewRatio(band); err != nil {
		return nil, &ValidationError{Field: "context.trend_band", Value: band, Reason: "must be within [0, 1]"}
	}
	return &SMAProvider[B]{window: window, nearWindow: nearWindow, band: band}, nil
}

// DefaultSMAProvider uses a 14 bar window, a 5 bar proximity window and a 0.2% trend band
func DefaultSMAProvider[B Bar]() *SMAProvider[B] {
	return &SMAProvider[B]{window: DefaultContextWindow, nearWindow: DefaultNearWindow, band: DefaultTrendBand}
}

// Lookback returns the window length
func (p *SMAProvider[B]) Lookback() int { return p.window }

// ComputeAll returns one context per bar.
// Each index is summed directly rather than with a running sum so the
// result is bit-identical to ComputeAt.
func (p *SMAProvider[B]) ComputeAll(bars []B) []MarketContext {
	out := make([]MarketContext, len(bars))
	for i := range bars {
		out[i] = p.ComputeAt(bars, i)
	}
	return out
}

// ComputeAt returns the context for bars[index] using bars[index-window:index].
// index may equal len(bars), which yields the context for the next bar to arrive.
func (p *SMAProvider[B]) ComputeAt(bars []B, index int) MarketContext {
	start := max(0, index-p.window)
	n := index - start
	if n <= 0 {
		return MarketContext{Trend: Sideways}
	}

	var sumBody, sumUpper, sumLower, sumRange, sumVolume, sumClose, sumNear float64
	nearStart := index - min(p.nearWindow, n)
	for j := start; j < index; j++ {
		c := unpack(bars[j])
		sumBody += c.body()
		sumUpper += c.upperShadow()
		sumLower += c.lowerShadow()
		sumRange += c.rng()
		sumVolume += c.volume
		sumClose += c.close
		if j >= nearStart {
			sumNear += c.rng()
		}
	}

	fn := float64(n)
	ctx := MarketContext{
		AvgBody:        sumBody / fn,
		AvgUpperShadow: sumUpper / fn,
		AvgLowerShadow: sumLower / fn,
		AvgRange:       sumRange / fn,
		AvgRangeNear:   sumNear / float64(index-nearStart),
		AvgVolume:      sumVolume / fn,
		LookbackUsed:   n,
	}
	ctx.AvgShadow = (ctx.AvgUpperShadow + ctx.AvgLowerShadow) / 2

	sma := sumClose / fn
	ctx.Trend = classifyTrend(unpack(bars[index-1]).close, sma, p.band)
	if sma > 0 {
		ctx.Volatility = ctx.AvgRange / sma
	}
	return ctx
}

// classifyTrend compares the last close with a reference average
func classifyTrend(last, ref, band float64) Trend {
	if ref == 0 || math.IsNaN(ref) {
		return Sideways
	}
	rel := (last - ref) / math.Abs(ref)
	switch {
	case rel > band:
		return Up
	case rel < -band:
		return Down
	default:
		return Sideways
	}
}

package pattern

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
)

// IndicatorProvider derives trend from an EMA of closes and volatility from
// the Average True Range. Bar geometry averages come from an embedded SMAProvider.
// Both indicators are recomputed on the trailing window so a context never
// depends on bars older than Lookback.
type IndicatorProvider[B Bar] struct {
	base      *SMAProvider[B]
	window    int
	emaPeriod int
	atrPeriod int
	band      float64
}

// NewIndicatorProvider creates an EMA/ATR provider on top of base.
// window bounds how many preceding bars feed the indicators.
func NewIndicatorProvider[B Bar](base *SMAProvider[B], window, emaPeriod, atrPeriod int) (*IndicatorProvider[B], error) {
	if base == nil {
		base = DefaultSMAProvider[B]()
	}
	if emaPeriod < 2 {
		return nil, &ValidationError{Field: "context.ema_period", Value: float64(emaPeriod), Reason: "must be at least 2"}
	}
	if atrPeriod < 1 {
		return nil, &ValidationError{Field: "context.atr_period", Value: float64(atrPeriod), Reason: "must be at least 1"}
	}
	if window < emaPeriod || window <= atrPeriod {
		return nil, &ValidationError{Field: "context.indicator_window", Value: float64(window), Reason: "must cover the EMA and ATR periods"}
	}
	return &IndicatorProvider[B]{
		base:      base,
		window:    window,
		emaPeriod: emaPeriod,
		atrPeriod: atrPeriod,
		band:      base.band,
	}, nil
}

// Lookback returns the larger of the indicator window and the base window
func (p *IndicatorProvider[B]) Lookback() int { return max(p.window, p.base.Lookback()) }

// ComputeAll returns one context per bar
func (p *IndicatorProvider[B]) ComputeAll(bars []B) []MarketContext {
	out := make([]MarketContext, len(bars))
	for i := range bars {
		out[i] = p.ComputeAt(bars, i)
	}
	return out
}

// ComputeAt returns the context for bars[index]. Until enough history exists
// for an indicator, the SMA based value is kept.
func (p *IndicatorProvider[B]) ComputeAt(bars []B, index int) MarketContext {
	ctx := p.base.ComputeAt(bars, index)
	start := max(0, index-p.window)
	n := index - start
	if n < p.emaPeriod {
		return ctx
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for j := start; j < index; j++ {
		c := unpack(bars[j])
		highs[j-start] = c.high
		lows[j-start] = c.low
		closes[j-start] = c.close
	}

	ema := trend.NewEmaWithPeriod[float64](p.emaPeriod)
	emaValues := helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
	if len(emaValues) > 0 {
		ctx.Trend = classifyTrend(closes[n-1], emaValues[len(emaValues)-1], p.band)
	}

	if n > p.atrPeriod {
		atr := volatility.NewAtrWithPeriod[float64](p.atrPeriod)
		atrValues := helper.ChanToSlice(atr.Compute(
			helper.SliceToChan(highs),
			helper.SliceToChan(lows),
			helper.SliceToChan(closes),
		))
		if len(atrValues) > 0 {
			ctx.Volatility = atrValues[len(atrValues)-1]
		}
	}
	return ctx
}

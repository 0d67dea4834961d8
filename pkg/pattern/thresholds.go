package pattern

import (
	"math"
)

// Range based fallbacks used while no context history exists
const (
	coldBodyShortRatio   = 0.3
	coldBodyLongRatio    = 0.7
	coldShadowShortRatio = 0.1
	coldShadowLongRatio  = 0.3
)

// thresholds answers the shape questions every rule asks, relative to the
// market context. With an empty context it falls back to ratios of the bar's
// own range.
type thresholds struct {
	p   *Params
	ctx *MarketContext
}

func (t thresholds) cold() bool { return t.ctx.LookbackUsed == 0 }

func (t thresholds) doji(c candle) bool {
	if t.cold() {
		return c.body() <= t.p.ColdStartBody*math.Abs(c.close)
	}
	return c.body() <= t.p.DojiFactor*t.ctx.AvgRange
}

func (t thresholds) bodyShort(c candle) bool {
	if t.cold() {
		return c.body() <= coldBodyShortRatio*c.rng()
	}
	return c.body() < t.p.BodyShortFactor*t.ctx.AvgBody
}

func (t thresholds) bodyLong(c candle) bool {
	if t.cold() {
		return c.rng() > 0 && c.body() >= coldBodyLongRatio*c.rng()
	}
	return c.body() > t.p.BodyLongFactor*t.ctx.AvgBody
}

// shadowVeryLong compares against the bar's own real body
func (t thresholds) shadowVeryLong(shadow float64, c candle) bool {
	return shadow > t.p.ShadowVeryLongFactor*c.body()
}

func (t thresholds) shadowVeryShort(shadow float64, c candle) bool {
	if t.cold() {
		return shadow <= coldShadowShortRatio*c.rng()
	}
	return shadow < t.p.ShadowVeryShortFactor*t.ctx.AvgRange
}

func (t thresholds) shadowShort(shadow float64, c candle) bool {
	if t.cold() {
		return shadow <= coldShadowShortRatio*c.rng()
	}
	return shadow < t.ctx.AvgShadow
}

func (t thresholds) shadowLongVsBody(shadow float64) bool {
	if t.cold() {
		return false
	}
	return shadow > t.p.BodyLongFactor*t.ctx.AvgBody
}

// proximityBase is the recent average range, or the bar's own range without history
func (t thresholds) proximityBase(c candle) float64 {
	if t.ctx.AvgRangeNear > 0 {
		return t.ctx.AvgRangeNear
	}
	if t.ctx.AvgRange > 0 {
		return t.ctx.AvgRange
	}
	return c.rng()
}

func (t thresholds) near(c candle) float64 { return t.p.NearFactor * t.proximityBase(c) }

func (t thresholds) far(c candle) float64 { return t.p.FarFactor * t.proximityBase(c) }

func (t thresholds) equal(c candle) float64 { return t.p.EqualFactor * t.proximityBase(c) }

// trendReady reports whether enough history exists for trend dependent rules
func (t thresholds) trendReady() bool {
	return t.ctx.LookbackUsed > 0 && t.ctx.LookbackUsed >= t.p.MinLookback
}

func colorDirection(c candle) Direction {
	if c.white() {
		return Bullish
	}
	return Bearish
}

// fraction returns num/den saturated to [0, 1]; a zero denominator yields 1
func fraction(num, den float64) float64 {
	if den <= 0 {
		return 1
	}
	return math.Max(0, math.Min(num/den, 1))
}

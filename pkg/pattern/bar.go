package pattern

import (
	"math"
)

// Bar is one OHLCV sample supplied by the caller's data layer.
// Implementations must be cheap to call; the engine never mutates or retains them.
type Bar interface {
	OHLCV() (open, high, low, close, volume float64)
}

// candle is the unpacked form of a Bar used by the built-in rules
type candle struct {
	open, high, low, close, volume float64
}

func unpack[B Bar](b B) candle {
	o, h, l, c, v := b.OHLCV()
	return candle{open: o, high: h, low: l, close: c, volume: v}
}

func (c candle) body() float64 { return math.Abs(c.close - c.open) }

func (c candle) rng() float64 { return c.high - c.low }

func (c candle) bodyTop() float64 { return math.Max(c.open, c.close) }

func (c candle) bodyBottom() float64 { return math.Min(c.open, c.close) }

func (c candle) upperShadow() float64 { return c.high - c.bodyTop() }

func (c candle) lowerShadow() float64 { return c.bodyBottom() - c.low }

// white uses the TA-Lib color rule: an unchanged close counts as white.
func (c candle) white() bool { return c.close >= c.open }

func (c candle) black() bool { return c.close < c.open }

// ValidateBars checks every bar for non-finite values and broken OHLC ordering.
// It returns the first offending bar as a *BarError.
func ValidateBars[B Bar](bars []B) error {
	for i, b := range bars {
		c := unpack(b)
		for _, v := range [...]float64{c.open, c.high, c.low, c.close, c.volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &BarError{Index: i, Reason: "non-finite value"}
			}
		}
		if c.high < c.low {
			return &BarError{Index: i, Reason: "high below low"}
		}
		if c.bodyTop() > c.high || c.bodyBottom() < c.low {
			return &BarError{Index: i, Reason: "body outside high/low range"}
		}
		if c.volume < 0 {
			return &BarError{Index: i, Reason: "negative volume"}
		}
	}
	return nil
}

package pattern

func windowStrength(gap, far float64) float64 {
	return 0.5 + 0.5*fraction(gap, far)
}

// detectRisingWindow: the low clears the prior high
func detectRisingWindow[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if c.low <= prev.high {
		return Neutral, 0, false
	}
	return Bullish, windowStrength(c.low-prev.high, t.far(c)), true
}

// detectFallingWindow: the high stays under the prior low
func detectFallingWindow[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if c.high >= prev.low {
		return Neutral, 0, false
	}
	return Bearish, windowStrength(prev.low-c.high, t.far(c)), true
}

// detectBeltHold: a long body opening on its extreme
func detectBeltHold[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.bodyLong(c) {
		return Neutral, 0, false
	}
	switch {
	case c.white() && t.shadowVeryShort(c.lowerShadow(), c):
		return Bullish, 0.6 + 0.2*fraction(c.body(), c.rng()), true
	case c.black() && t.shadowVeryShort(c.upperShadow(), c):
		return Bearish, 0.6 + 0.2*fraction(c.body(), c.rng()), true
	}
	return Neutral, 0, false
}

func marubozuShape(t thresholds, c candle) bool {
	return t.bodyLong(c) && t.shadowVeryShort(c.upperShadow(), c) && t.shadowVeryShort(c.lowerShadow(), c)
}

// detectKicking: two opposite colored marubozu separated by a gap
func detectKicking[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !marubozuShape(t, prev) || !marubozuShape(t, c) {
		return Neutral, 0, false
	}
	switch {
	case prev.black() && c.white() && c.low > prev.high:
		return Bullish, 0.8, true
	case prev.white() && c.black() && c.high < prev.low:
		return Bearish, 0.8, true
	}
	return Neutral, 0, false
}

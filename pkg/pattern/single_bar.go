package pattern

// Single bar rules. Each returns the direction, a raw strength and whether
// the shape matched at bars[i].

func dojiStrength(c candle, factor float64) float64 {
	if c.rng() == 0 {
		return 1
	}
	if factor == 0 {
		return 0.5
	}
	return 0.5 + 0.5*(1-fraction(c.body()/c.rng(), factor))
}

func detectDoji[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.doji(c) {
		return Neutral, 0, false
	}
	return Neutral, dojiStrength(c, t.p.DojiFactor), true
}

func detectDragonfly[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.doji(c) || !t.shadowVeryShort(c.upperShadow(), c) || t.shadowVeryShort(c.lowerShadow(), c) {
		return Neutral, 0, false
	}
	return Bullish, 0.6 + 0.4*fraction(c.lowerShadow(), c.rng()), true
}

func detectGravestone[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.doji(c) || !t.shadowVeryShort(c.lowerShadow(), c) || t.shadowVeryShort(c.upperShadow(), c) {
		return Neutral, 0, false
	}
	return Bearish, 0.6 + 0.4*fraction(c.upperShadow(), c.rng()), true
}

func detectLongLegged[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.doji(c) {
		return Neutral, 0, false
	}
	long := t.shadowLongVsBody(c.upperShadow()) || t.shadowLongVsBody(c.lowerShadow())
	if t.cold() {
		long = c.upperShadow() >= coldShadowLongRatio*c.rng() && c.lowerShadow() >= coldShadowLongRatio*c.rng()
	}
	if !long {
		return Neutral, 0, false
	}
	return Neutral, 0.5 + 0.3*fraction(c.upperShadow()+c.lowerShadow(), c.rng()), true
}

// hammerShape is shared by Hammer and HangingMan: short body at the top of
// the range with a very long lower shadow.
func hammerShape(t thresholds, c candle) bool {
	return t.bodyShort(c) &&
		t.shadowVeryLong(c.lowerShadow(), c) &&
		t.shadowVeryShort(c.upperShadow(), c)
}

// detectHammer needs a body near the prior low and no prevailing uptrend
func detectHammer[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	if !t.trendReady() || t.ctx.Trend == Up {
		return Neutral, 0, false
	}
	c, prev := unpack(bars[i]), unpack(bars[i-1])
	if !hammerShape(t, c) || c.bodyBottom() > prev.low+t.near(c) {
		return Neutral, 0, false
	}
	strength := 0.6 + 0.2*fraction(c.lowerShadow(), c.rng())
	if t.ctx.Trend == Down {
		strength += 0.2
	}
	return Bullish, strength, true
}

// detectHangingMan needs a body near the prior high and no prevailing downtrend
func detectHangingMan[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	if !t.trendReady() || t.ctx.Trend == Down {
		return Neutral, 0, false
	}
	c, prev := unpack(bars[i]), unpack(bars[i-1])
	if !hammerShape(t, c) || c.bodyBottom() < prev.high-t.near(c) {
		return Neutral, 0, false
	}
	strength := 0.6 + 0.2*fraction(c.lowerShadow(), c.rng())
	if t.ctx.Trend == Up {
		strength += 0.2
	}
	return Bearish, strength, true
}

func invertedShape(t thresholds, c candle) bool {
	return t.bodyShort(c) &&
		t.shadowVeryLong(c.upperShadow(), c) &&
		t.shadowVeryShort(c.lowerShadow(), c)
}

// detectInvertedHammer requires a real body gap down from the prior bar
func detectInvertedHammer[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c, prev := unpack(bars[i]), unpack(bars[i-1])
	if !invertedShape(t, c) || c.bodyTop() >= prev.bodyBottom() {
		return Neutral, 0, false
	}
	return Bullish, 0.6 + 0.3*fraction(c.upperShadow(), c.rng()), true
}

// detectShootingStar requires a real body gap up from the prior bar
func detectShootingStar[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c, prev := unpack(bars[i]), unpack(bars[i-1])
	if !invertedShape(t, c) || c.bodyBottom() <= prev.bodyTop() {
		return Neutral, 0, false
	}
	return Bearish, 0.6 + 0.3*fraction(c.upperShadow(), c.rng()), true
}

func detectMarubozu[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !marubozuShape(t, c) {
		return Neutral, 0, false
	}
	return colorDirection(c), 0.6 + 0.4*fraction(c.body(), c.rng()), true
}

func detectSpinningTop[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.bodyShort(c) || c.upperShadow() <= c.body() || c.lowerShadow() <= c.body() {
		return Neutral, 0, false
	}
	return Neutral, 0.5, true
}

func detectLongLine[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if !t.bodyLong(c) || !t.shadowShort(c.upperShadow(), c) || !t.shadowShort(c.lowerShadow(), c) {
		return Neutral, 0, false
	}
	return colorDirection(c), 0.5 + 0.3*fraction(c.body(), c.rng()), true
}

func detectShortLine[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	c := unpack(bars[i])
	if c.body() == 0 || !t.bodyShort(c) || !t.shadowShort(c.upperShadow(), c) || !t.shadowShort(c.lowerShadow(), c) {
		return Neutral, 0, false
	}
	return colorDirection(c), 0.4, true
}

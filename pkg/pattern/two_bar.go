package pattern

import (
	"math"
)

// detectEngulfing follows the TA-Lib body rule: the second body covers the
// first with opposite color, and at most one of the two ends may be equal.
func detectEngulfing[B Bar](_ thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	switch {
	case prev.black() && c.white():
		strictTop := c.close > prev.open
		strictBottom := c.open < prev.close
		if (c.close >= prev.open && strictBottom) || (strictTop && c.open <= prev.close) {
			return Bullish, engulfStrength(strictTop, strictBottom), true
		}
	case prev.white() && c.black():
		strictTop := c.open > prev.close
		strictBottom := c.close < prev.open
		if (c.open >= prev.close && strictBottom) || (strictTop && c.close <= prev.open) {
			return Bearish, engulfStrength(strictTop, strictBottom), true
		}
	}
	return Neutral, 0, false
}

func engulfStrength(strictTop, strictBottom bool) float64 {
	if strictTop && strictBottom {
		return 0.7
	}
	return 0.6
}

// inside reports whether the body of c sits within the body of outer,
// and whether both ends are strictly inside.
func inside(c, outer candle) (ok, strict bool) {
	ok = c.bodyTop() <= outer.bodyTop() && c.bodyBottom() >= outer.bodyBottom()
	strict = c.bodyTop() < outer.bodyTop() && c.bodyBottom() > outer.bodyBottom()
	return ok, strict
}

func reversalOf(c candle) Direction {
	if c.white() {
		return Bearish
	}
	return Bullish
}

func detectHarami[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !t.bodyLong(prev) || !t.bodyShort(c) {
		return Neutral, 0, false
	}
	ok, strict := inside(c, prev)
	if !ok {
		return Neutral, 0, false
	}
	if strict {
		return reversalOf(prev), 0.7, true
	}
	return reversalOf(prev), 0.6, true
}

func detectHaramiCross[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !t.bodyLong(prev) || !t.doji(c) {
		return Neutral, 0, false
	}
	ok, strict := inside(c, prev)
	if !ok {
		return Neutral, 0, false
	}
	if strict {
		return reversalOf(prev), 0.75, true
	}
	return reversalOf(prev), 0.65, true
}

// detectPiercing: long black bar, then a long white bar opening below its low
// and closing past the penetration point but below its open.
func detectPiercing[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !prev.black() || !c.white() || !t.bodyLong(prev) || !t.bodyLong(c) {
		return Neutral, 0, false
	}
	if c.open >= prev.low || c.close >= prev.open {
		return Neutral, 0, false
	}
	if c.close <= prev.close+prev.body()*t.p.Penetration {
		return Neutral, 0, false
	}
	return Bullish, 0.6 + 0.4*fraction(c.close-prev.close, prev.body()), true
}

func detectDarkCloudCover[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !prev.white() || !c.black() || !t.bodyLong(prev) {
		return Neutral, 0, false
	}
	if c.open <= prev.high || c.close <= prev.open {
		return Neutral, 0, false
	}
	if c.close >= prev.close-prev.body()*t.p.Penetration {
		return Neutral, 0, false
	}
	return Bearish, 0.6 + 0.4*fraction(prev.close-c.close, prev.body()), true
}

// detectDojiStar: a doji whose body gaps away from a long body
func detectDojiStar[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !t.bodyLong(prev) || !t.doji(c) {
		return Neutral, 0, false
	}
	switch {
	case prev.white() && c.bodyBottom() > prev.bodyTop():
		return Bearish, 0.6, true
	case prev.black() && c.bodyTop() < prev.bodyBottom():
		return Bullish, 0.6, true
	}
	return Neutral, 0, false
}

func tweezerStrength(diff, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0.8
	}
	return 0.6 + 0.2*(1-fraction(diff, tolerance))
}

// detectTweezerTop: matching highs after an advance, white then black
func detectTweezerTop[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	if !t.trendReady() || t.ctx.Trend != Up {
		return Neutral, 0, false
	}
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !prev.white() || !c.black() || t.bodyShort(prev) {
		return Neutral, 0, false
	}
	diff, tol := math.Abs(c.high-prev.high), t.equal(c)
	if diff > tol {
		return Neutral, 0, false
	}
	return Bearish, tweezerStrength(diff, tol), true
}

// detectTweezerBottom: matching lows after a decline, black then white
func detectTweezerBottom[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	if !t.trendReady() || t.ctx.Trend != Down {
		return Neutral, 0, false
	}
	prev, c := unpack(bars[i-1]), unpack(bars[i])
	if !prev.black() || !c.white() || t.bodyShort(prev) {
		return Neutral, 0, false
	}
	diff, tol := math.Abs(c.low-prev.low), t.equal(c)
	if diff > tol {
		return Neutral, 0, false
	}
	return Bullish, tweezerStrength(diff, tol), true
}

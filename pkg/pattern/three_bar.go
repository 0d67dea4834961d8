package pattern

// detectMorningStar: long black, a short body gapping down, then a white bar
// closing well into the first body.
func detectMorningStar[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	first, star, last := unpack(bars[i-2]), unpack(bars[i-1]), unpack(bars[i])
	if !first.black() || !t.bodyLong(first) || !t.bodyShort(star) || !last.white() {
		return Neutral, 0, false
	}
	if star.bodyTop() >= first.bodyBottom() {
		return Neutral, 0, false
	}
	if last.close <= first.close+first.body()*t.p.Penetration {
		return Neutral, 0, false
	}
	return Bullish, 0.7 + 0.3*fraction(last.close-first.close, first.body()), true
}

func detectEveningStar[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	first, star, last := unpack(bars[i-2]), unpack(bars[i-1]), unpack(bars[i])
	if !first.white() || !t.bodyLong(first) || !t.bodyShort(star) || !last.black() {
		return Neutral, 0, false
	}
	if star.bodyBottom() <= first.bodyTop() {
		return Neutral, 0, false
	}
	if last.close >= first.close-first.body()*t.p.Penetration {
		return Neutral, 0, false
	}
	return Bearish, 0.7 + 0.3*fraction(first.close-last.close, first.body()), true
}

// detectThreeWhiteSoldiers: three advancing white bars, each opening inside
// the previous body and closing near its high.
func detectThreeWhiteSoldiers[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	a, b, c := unpack(bars[i-2]), unpack(bars[i-1]), unpack(bars[i])
	for _, x := range [...]candle{a, b, c} {
		if !x.white() || t.bodyShort(x) || !t.shadowVeryShort(x.upperShadow(), x) {
			return Neutral, 0, false
		}
	}
	if !(b.close > a.close && c.close > b.close) {
		return Neutral, 0, false
	}
	if b.open <= a.open || b.open > a.close || c.open <= b.open || c.open > b.close {
		return Neutral, 0, false
	}
	return Bullish, 0.75, true
}

func detectThreeBlackCrows[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	a, b, c := unpack(bars[i-2]), unpack(bars[i-1]), unpack(bars[i])
	for _, x := range [...]candle{a, b, c} {
		if !x.black() || t.bodyShort(x) || !t.shadowVeryShort(x.lowerShadow(), x) {
			return Neutral, 0, false
		}
	}
	if !(b.close < a.close && c.close < b.close) {
		return Neutral, 0, false
	}
	if b.open >= a.open || b.open < a.close || c.open >= b.open || c.open < b.close {
		return Neutral, 0, false
	}
	return Bearish, 0.75, true
}

// detectThreeInside: a harami confirmed by a third bar closing beyond the first open
func detectThreeInside[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	a, b, c := unpack(bars[i-2]), unpack(bars[i-1]), unpack(bars[i])
	if !t.bodyLong(a) || !t.bodyShort(b) {
		return Neutral, 0, false
	}
	if ok, _ := inside(b, a); !ok {
		return Neutral, 0, false
	}
	switch {
	case a.white() && c.black() && c.close < a.open:
		return Bearish, 0.7, true
	case a.black() && c.white() && c.close > a.open:
		return Bullish, 0.7, true
	}
	return Neutral, 0, false
}

// detectThreeOutside: an engulfing pair followed by a continuation close
func detectThreeOutside[B Bar](t thresholds, bars []B, i int) (Direction, float64, bool) {
	dir, _, ok := detectEngulfing(t, bars, i-1)
	if !ok {
		return Neutral, 0, false
	}
	b, c := unpack(bars[i-1]), unpack(bars[i])
	switch {
	case dir == Bullish && c.close > b.close:
		return Bullish, 0.7, true
	case dir == Bearish && c.close < b.close:
		return Bearish, 0.7, true
	}
	return Neutral, 0, false
}

package pattern

import (
	"math/rand/v2"
	"sync/atomic"
)

type bar struct {
	o, h, l, c, v float64
}

func (b bar) OHLCV() (open, high, low, close, volume float64) {
	return b.o, b.h, b.l, b.c, b.v
}

func ohlc(o, h, l, c float64) bar {
	return bar{o: o, h: h, l: l, c: c, v: 1000}
}

// randomWalk generates well-formed bars with occasional dojis and gaps
func randomWalk(seed uint64, n int) []bar {
	r := rand.New(rand.NewPCG(seed, 7))
	bars := make([]bar, n)
	price := 100.0
	for i := range bars {
		open := price
		close := open + (r.Float64()-0.5)*2
		if r.IntN(6) == 0 {
			close = open + (r.Float64()-0.5)*0.02
		}
		high := max(open, close) + r.Float64()*0.6
		low := min(open, close) - r.Float64()*0.6
		bars[i] = bar{o: open, h: high, l: low, c: close, v: 1000 + r.Float64()*500}

		price = close
		if r.IntN(8) == 0 {
			price += (r.Float64() - 0.5) * 3
		}
	}
	return bars
}

func trending(n int, step float64) []bar {
	bars := make([]bar, n)
	for j := range bars {
		open := 100 + float64(j)*step
		close := open + 0.8*sign(step)
		bars[j] = ohlc(open, max(open, close)+0.1, min(open, close)-0.1, close)
	}
	return bars
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func filterEnd(matches []Match, index int) []Match {
	var out []Match
	for _, m := range matches {
		if m.EndIndex == index {
			out = append(out, m)
		}
	}
	return out
}

// always matches every index it is asked about and counts its calls
type always struct {
	id      PatternID
	minBars int
	calls   atomic.Int64
	lowest  atomic.Int64
}

func newAlways(id PatternID, minBars int) *always {
	a := &always{id: id, minBars: minBars}
	a.lowest.Store(1 << 40)
	return a
}

func (a *always) ID() PatternID { return a.id }
func (a *always) MinBars() int  { return a.minBars }
func (a *always) Detect(bars []Bar, index int, ctx *MarketContext) (Match, bool) {
	a.calls.Add(1)
	for {
		cur := a.lowest.Load()
		if int64(index) >= cur || a.lowest.CompareAndSwap(cur, int64(index)) {
			break
		}
	}
	return Match{
		Direction:  Neutral,
		Strength:   MustRatio(0.5),
		StartIndex: index - a.minBars + 1,
		EndIndex:   index,
	}, true
}

func warmContext(avgBody, avgRange float64) *MarketContext {
	return &MarketContext{
		Trend:          Sideways,
		AvgBody:        avgBody,
		AvgUpperShadow: avgRange / 4,
		AvgLowerShadow: avgRange / 4,
		AvgShadow:      avgRange / 4,
		AvgRange:       avgRange,
		AvgRangeNear:   avgRange,
		LookbackUsed:   10,
	}
}

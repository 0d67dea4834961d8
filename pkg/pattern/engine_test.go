package pattern

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullEngine(t *testing.T, customs ...Detector) *Engine[bar] {
	t.Helper()
	b := NewBuilder[bar]().AddKinds(AllKinds()...)
	for _, d := range customs {
		b.AddCustom(d)
	}
	engine, err := b.Build()
	require.NoError(t, err)
	return engine
}

func flatten(groups [][]Match) []Match {
	var out []Match
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestScanEntryPointsAgree(t *testing.T) {
	engine := fullEngine(t, newAlways("WINDOW_FOUR", 4))
	bars := randomWalk(21, 300)

	batch := engine.Scan(bars)
	require.NotEmpty(t, batch)

	contexts := engine.ComputeContexts(bars)

	t.Run("grouped", func(t *testing.T) {
		groups := engine.ScanGrouped(bars)
		require.Len(t, groups, len(bars))
		for i, g := range groups {
			for _, m := range g {
				assert.Equal(t, i, m.EndIndex)
			}
		}
		assert.Equal(t, batch, flatten(groups))
	})

	t.Run("range with computed contexts", func(t *testing.T) {
		got, err := engine.ScanRange(bars, 0, len(bars), nil)
		require.NoError(t, err)
		assert.Equal(t, batch, got)
	})

	t.Run("range with supplied contexts", func(t *testing.T) {
		got, err := engine.ScanRange(bars, 0, len(bars), contexts)
		require.NoError(t, err)
		assert.Equal(t, batch, got)
	})

	t.Run("per index", func(t *testing.T) {
		var got []Match
		for i := range bars {
			got = append(got, engine.ScanAt(bars, i, contexts[i])...)
		}
		assert.Equal(t, batch, got)
	})

	t.Run("iterator", func(t *testing.T) {
		var got []Match
		next := 0
		for i, ms := range engine.Iter(bars) {
			assert.Equal(t, next, i)
			next++
			got = append(got, ms...)
		}
		assert.Equal(t, len(bars), next)
		assert.Equal(t, batch, got)
	})
}

func TestScanOrdering(t *testing.T) {
	engine := fullEngine(t, newAlways("CUSTOM_ONE", 1))
	order := make(map[PatternID]int)
	for i, id := range engine.Detectors() {
		order[id] = i
	}

	matches := engine.Scan(randomWalk(22, 200))
	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		require.LessOrEqual(t, prev.EndIndex, cur.EndIndex)
		if prev.EndIndex == cur.EndIndex {
			assert.Less(t, order[prev.PatternID], order[cur.PatternID])
		}
	}
}

func TestScanMatchInvariants(t *testing.T) {
	engine := fullEngine(t)
	bars := randomWalk(23, 400)

	for _, m := range engine.Scan(bars) {
		kind, ok := LookupKind(m.PatternID)
		require.True(t, ok)
		assert.GreaterOrEqual(t, m.StartIndex, 0)
		assert.LessOrEqual(t, m.StartIndex, m.EndIndex)
		assert.Less(t, m.EndIndex, len(bars))
		assert.GreaterOrEqual(t, m.EndIndex+1, kind.MinBars())
		assert.False(t, math.IsNaN(m.Strength.Value()))
		assert.GreaterOrEqual(t, m.Strength.Value(), 0.0)
		assert.LessOrEqual(t, m.Strength.Value(), 1.0)
		if dir, fixed := kind.TypicalDirection(); fixed {
			assert.Equal(t, dir, m.Direction, "%s", m.PatternID)
		}
	}
}

func TestScanRangeSubrange(t *testing.T) {
	engine := fullEngine(t)
	bars := randomWalk(24, 150)
	batch := engine.Scan(bars)

	got, err := engine.ScanRange(bars, 40, 90, nil)
	require.NoError(t, err)

	var want []Match
	for _, m := range batch {
		if m.EndIndex >= 40 && m.EndIndex < 90 {
			want = append(want, m)
		}
	}
	assert.Equal(t, want, got)
}

func TestScanRangeErrors(t *testing.T) {
	engine := fullEngine(t)
	bars := randomWalk(25, 10)
	short := engine.ComputeContexts(bars[:5])

	tests := []struct {
		name       string
		start, end int
		contexts   []MarketContext
	}{
		{"negative start", -1, 5, nil},
		{"start after end", 6, 5, nil},
		{"end beyond input", 0, 11, nil},
		{"contexts too short", 0, 8, short},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := engine.ScanRange(bars, tt.start, tt.end, tt.contexts)
			assert.ErrorIs(t, err, ErrRange)
			assert.Nil(t, matches)
		})
	}

	matches, err := engine.ScanRange(bars, 5, 5, nil)
	assert.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScanEmptyInput(t *testing.T) {
	engine := fullEngine(t)

	assert.Empty(t, engine.Scan(nil))
	assert.Empty(t, engine.ScanGrouped(nil))
	assert.Empty(t, engine.ComputeContexts(nil))
	assert.Nil(t, engine.ScanAt(nil, 0, MarketContext{}))
	for range engine.Iter(nil) {
		t.Fatal("iterator over no bars yielded")
	}
}

func TestMinBarsGuard(t *testing.T) {
	wide := newAlways("WIDE", 5)
	engine, err := NewBuilder[bar]().AddCustom(wide).Build()
	require.NoError(t, err)

	matches := engine.Scan(randomWalk(26, 20))
	assert.Len(t, matches, 16)
	assert.Equal(t, int64(16), wide.calls.Load())
	assert.Equal(t, int64(4), wide.lowest.Load())
	assert.Equal(t, 5, engine.MaxMinBars())
}

func TestFiltersDoNotChangeInvocations(t *testing.T) {
	bars := randomWalk(27, 50)

	tests := []struct {
		name      string
		configure func(*Builder[bar]) *Builder[bar]
		wantKept  int
	}{
		{"no filter", func(b *Builder[bar]) *Builder[bar] { return b }, 100},
		{"strength above every match", func(b *Builder[bar]) *Builder[bar] { return b.MinStrength(0.9) }, 0},
		{"strength at match value", func(b *Builder[bar]) *Builder[bar] { return b.MinStrength(0.5) }, 100},
		{"allow one id", func(b *Builder[bar]) *Builder[bar] { return b.OnlyPatterns("FIRST") }, 50},
		{"allow unknown id", func(b *Builder[bar]) *Builder[bar] { return b.OnlyPatterns("NOBODY") }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := newAlways("FIRST", 1), newAlways("SECOND", 1)
			engine, err := tt.configure(NewBuilder[bar]().AddCustom(first).AddCustom(second)).Build()
			require.NoError(t, err)

			assert.Len(t, engine.Scan(bars), tt.wantKept)
			assert.Equal(t, int64(50), first.calls.Load())
			assert.Equal(t, int64(50), second.calls.Load())
		})
	}
}

func TestCustomMatchIsStamped(t *testing.T) {
	sloppy := NewDetector("SLOPPY", 2, func(bars []Bar, index int, ctx *MarketContext) (Match, bool) {
		_, _, _, c, _ := bars[index].OHLCV()
		_, _, _, pc, _ := bars[index-1].OHLCV()
		if c <= pc {
			return Match{}, false
		}
		return Match{PatternID: "WRONG", EndIndex: -7, StartIndex: index - 1, Direction: Bullish, Strength: MustRatio(0.6)}, true
	})
	engine, err := NewBuilder[bar]().AddCustom(sloppy).Build()
	require.NoError(t, err)

	bars := trending(10, 1)
	matches := engine.Scan(bars)
	require.Len(t, matches, 9)
	for i, m := range matches {
		assert.Equal(t, PatternID("SLOPPY"), m.PatternID)
		assert.Equal(t, i+1, m.EndIndex)
		assert.Equal(t, i, m.StartIndex)
		assert.Equal(t, 2, m.Bars())
	}
}

func TestCustomStartIndexStaysInWindow(t *testing.T) {
	tests := []struct {
		name      string
		start     func(index int) int
		wantStart func(index int) int
	}{
		{"negative start", func(int) int { return -50 }, func(i int) int { return i - 2 }},
		{"start after end", func(i int) int { return i + 5 }, func(i int) int { return i }},
		{"inside window", func(i int) int { return i - 1 }, func(i int) int { return i - 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector("WILD", 3, func(bars []Bar, index int, ctx *MarketContext) (Match, bool) {
				return Match{StartIndex: tt.start(index), Strength: MustRatio(0.5)}, true
			})
			engine, err := NewBuilder[bar]().AddCustom(d).Build()
			require.NoError(t, err)

			bars := randomWalk(33, 20)
			contexts := engine.ComputeContexts(bars)
			matches := engine.Scan(bars)
			require.Len(t, matches, 18)
			for _, m := range matches {
				assert.Equal(t, tt.wantStart(m.EndIndex), m.StartIndex)
				assert.LessOrEqual(t, m.StartIndex, m.EndIndex)
				assert.Equal(t, []Match{m}, engine.ScanAt(bars, m.EndIndex, contexts[m.EndIndex]))
			}
		})
	}
}

func TestScanAtPassesTrailingWindow(t *testing.T) {
	var widest atomic.Int64
	d := NewDetector("LOOKBACK", 3, func(bars []Bar, index int, ctx *MarketContext) (Match, bool) {
		widest.Store(max(widest.Load(), int64(len(bars))))
		_, _, _, first, _ := bars[index-2].OHLCV()
		_, _, _, last, _ := bars[index].OHLCV()
		return Match{StartIndex: index - 2, Strength: MustRatio(0.5), Direction: directionOf(last - first)}, true
	})
	engine, err := NewBuilder[bar]().AddKinds(SingleBarKinds()...).AddCustom(d).Build()
	require.NoError(t, err)

	bars := randomWalk(34, 500)
	contexts := engine.ComputeContexts(bars)
	want := engine.Scan(bars)

	widest.Store(0)
	var got []Match
	for i := range bars {
		got = append(got, engine.ScanAt(bars, i, contexts[i])...)
	}
	assert.Equal(t, want, got)
	assert.LessOrEqual(t, widest.Load(), int64(engine.MaxMinBars()))
}

func directionOf(delta float64) Direction {
	switch {
	case delta > 0:
		return Bullish
	case delta < 0:
		return Bearish
	}
	return Neutral
}

func TestBarViewOnlyWithCustoms(t *testing.T) {
	bars := randomWalk(28, 10)

	assert.Nil(t, fullEngine(t).barView(bars))

	view := fullEngine(t, newAlways("ANY", 1)).barView(bars)
	require.Len(t, view, len(bars))
	assert.Equal(t, bars[3], view[3])
}

func TestIterStopsEarly(t *testing.T) {
	counter := newAlways("COUNT", 1)
	engine, err := NewBuilder[bar]().AddCustom(counter).Build()
	require.NoError(t, err)

	for i := range engine.Iter(randomWalk(29, 100)) {
		if i == 4 {
			break
		}
	}
	assert.Equal(t, int64(5), counter.calls.Load())
}

func TestConcurrentScans(t *testing.T) {
	engine := fullEngine(t, newAlways("SHARED", 2))
	bars := randomWalk(30, 250)
	want := engine.Scan(bars)

	var wg sync.WaitGroup
	results := make([][]Match, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			results[g] = engine.Scan(bars)
		}(g)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEngineCheck(t *testing.T) {
	bad := []bar{ohlc(10, 11, 9, 10.5), ohlc(10, 9, 11, 10)}

	lenient := fullEngine(t)
	assert.NoError(t, lenient.Check(bad))

	strict, err := NewBuilder[bar]().AddKinds(AllKinds()...).ValidateBars(true).Build()
	require.NoError(t, err)
	err = strict.Check(bad)
	assert.ErrorIs(t, err, ErrInvalidBar)

	var barErr *BarError
	require.ErrorAs(t, err, &barErr)
	assert.Equal(t, 1, barErr.Index)
}

func TestValidateBars(t *testing.T) {
	tests := []struct {
		name string
		bar  bar
		ok   bool
	}{
		{"well formed", ohlc(10, 11, 9, 10.5), true},
		{"flat", ohlc(10, 10, 10, 10), true},
		{"nan close", ohlc(10, 11, 9, math.NaN()), false},
		{"infinite high", ohlc(10, math.Inf(1), 9, 10), false},
		{"high below low", ohlc(10, 9, 11, 10), false},
		{"close above high", ohlc(10, 11, 9, 12), false},
		{"open below low", ohlc(8, 11, 9, 10), false},
		{"negative volume", bar{o: 10, h: 11, l: 9, c: 10, v: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBars([]bar{tt.bar})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidBar)
		})
	}
}

func BenchmarkScan(b *testing.B) {
	bars := randomWalk(99, 10000)

	builtins, err := NewBuilder[bar]().AddKinds(AllKinds()...).Build()
	require.NoError(b, err)
	mixed, err := NewBuilder[bar]().AddKinds(AllKinds()...).AddCustom(newAlways("CUSTOM", 3)).Build()
	require.NoError(b, err)

	engines := []struct {
		name   string
		engine *Engine[bar]
	}{
		{"builtins", builtins},
		{"builtins+custom", mixed},
	}
	for _, e := range engines {
		b.Run(e.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				e.engine.Scan(bars)
			}
		})
	}
}

func BenchmarkStreamPush(b *testing.B) {
	engine, err := NewBuilder[bar]().AddKinds(AllKinds()...).AddCustom(newAlways("CUSTOM", 3)).Build()
	require.NoError(b, err)
	s, err := engine.NewStream(WithHistory(256))
	require.NoError(b, err)
	bars := randomWalk(98, 4096)

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		s.Push(bars[i%len(bars)])
		i++
	}
}

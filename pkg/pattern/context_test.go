package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAProviderFirstIndex(t *testing.T) {
	p := DefaultSMAProvider[bar]()
	ctx := p.ComputeAt(randomWalk(1, 5), 0)

	assert.Equal(t, 0, ctx.LookbackUsed)
	assert.Equal(t, Sideways, ctx.Trend)
	assert.Zero(t, ctx.AvgBody)
	assert.Zero(t, ctx.AvgRange)
}

func TestSMAProviderLookbackShortfall(t *testing.T) {
	p := DefaultSMAProvider[bar]()
	bars := randomWalk(2, 40)

	tests := []struct {
		index int
		want  int
	}{
		{1, 1},
		{5, 5},
		{14, 14},
		{15, 14},
		{39, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.ComputeAt(bars, tt.index).LookbackUsed, "index %d", tt.index)
	}
}

func TestSMAProviderAverages(t *testing.T) {
	p, err := NewSMAProvider[bar](3, 2, 0.01)
	require.NoError(t, err)

	bars := []bar{
		ohlc(10, 12, 9, 11),      // body 1, upper 1, lower 1, range 3
		ohlc(11, 11.5, 10, 10.5), // body 0.5, upper 0.5, lower 0.5, range 1.5
		ohlc(10, 13, 10, 13),     // body 3, upper 0, lower 0, range 3
		ohlc(13, 14, 12, 13.5),
	}
	ctx := p.ComputeAt(bars, 3)

	assert.Equal(t, 3, ctx.LookbackUsed)
	assert.InDelta(t, 1.5, ctx.AvgBody, 1e-12)
	assert.InDelta(t, 0.5, ctx.AvgUpperShadow, 1e-12)
	assert.InDelta(t, 0.5, ctx.AvgLowerShadow, 1e-12)
	assert.InDelta(t, 0.5, ctx.AvgShadow, 1e-12)
	assert.InDelta(t, 2.5, ctx.AvgRange, 1e-12)
	assert.InDelta(t, 2.25, ctx.AvgRangeNear, 1e-12)
	assert.InDelta(t, 1000, ctx.AvgVolume, 1e-9)
	// last close 13 against an average of 11.5
	assert.Equal(t, Up, ctx.Trend)
}

func TestSMAProviderTrend(t *testing.T) {
	p := DefaultSMAProvider[bar]()

	assert.Equal(t, Up, p.ComputeAt(trending(20, 1), 15).Trend)
	assert.Equal(t, Down, p.ComputeAt(trending(20, -1), 15).Trend)

	flat := make([]bar, 20)
	for i := range flat {
		flat[i] = ohlc(50, 50.5, 49.5, 50)
	}
	assert.Equal(t, Sideways, p.ComputeAt(flat, 15).Trend)
}

func TestComputeAtMatchesComputeAll(t *testing.T) {
	sma := DefaultSMAProvider[bar]()
	indicator, err := NewIndicatorProvider(sma, 30, 10, 14)
	require.NoError(t, err)

	providers := map[string]ContextProvider[bar]{
		"sma":       sma,
		"indicator": indicator,
	}
	bars := randomWalk(3, 120)

	for name, p := range providers {
		t.Run(name, func(t *testing.T) {
			all := p.ComputeAll(bars)
			require.Len(t, all, len(bars))
			for i := range bars {
				assert.Equal(t, all[i], p.ComputeAt(bars, i), "index %d", i)
			}
		})
	}
}

func TestContextIsLookAheadFree(t *testing.T) {
	sma := DefaultSMAProvider[bar]()
	indicator, err := NewIndicatorProvider(sma, 30, 10, 14)
	require.NoError(t, err)

	providers := map[string]ContextProvider[bar]{
		"sma":       sma,
		"indicator": indicator,
	}

	for name, p := range providers {
		t.Run(name, func(t *testing.T) {
			bars := randomWalk(4, 80)
			for _, i := range []int{0, 1, 13, 14, 40, 79} {
				before := p.ComputeAt(bars, i)

				mutated := append([]bar(nil), bars...)
				for j := i; j < len(mutated); j++ {
					mutated[j] = ohlc(1, 500, 0.5, 400)
				}
				assert.Equal(t, before, p.ComputeAt(mutated, i), "index %d", i)
				assert.Equal(t, before, p.ComputeAll(mutated)[i], "index %d", i)
			}
		})
	}
}

func TestComputeAtNextBar(t *testing.T) {
	p := DefaultSMAProvider[bar]()
	bars := randomWalk(5, 20)

	next := p.ComputeAt(bars, len(bars))
	extended := append(append([]bar(nil), bars...), ohlc(1, 2, 0.5, 1.5))
	assert.Equal(t, p.ComputeAt(extended, len(bars)), next)
}

func TestNewSMAProviderValidation(t *testing.T) {
	tests := []struct {
		name       string
		window     int
		nearWindow int
		band       float64
	}{
		{"zero window", 0, 1, 0.01},
		{"zero near window", 10, 0, 0.01},
		{"near window above window", 5, 6, 0.01},
		{"negative band", 10, 5, -0.1},
		{"band above one", 10, 5, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSMAProvider[bar](tt.window, tt.nearWindow, tt.band)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestIndicatorProvider(t *testing.T) {
	p, err := NewIndicatorProvider[bar](nil, 30, 10, 14)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Lookback())

	up := trending(60, 1)
	ctx := p.ComputeAt(up, 50)
	assert.Equal(t, Up, ctx.Trend)
	assert.Greater(t, ctx.Volatility, 0.0)

	down := trending(60, -1)
	assert.Equal(t, Down, p.ComputeAt(down, 50).Trend)

	// Too little history for the EMA keeps the SMA classification
	sma := DefaultSMAProvider[bar]()
	assert.Equal(t, sma.ComputeAt(up, 5), p.ComputeAt(up, 5))
}

func TestNewIndicatorProviderValidation(t *testing.T) {
	_, err := NewIndicatorProvider[bar](nil, 30, 1, 14)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewIndicatorProvider[bar](nil, 30, 10, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewIndicatorProvider[bar](nil, 12, 10, 14)
	assert.ErrorIs(t, err, ErrValidation)
}

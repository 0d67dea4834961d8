package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		body      string
		wantLabel string
		wantBars  int
	}{
		{
			name: "yaml document",
			file: "spy.yaml",
			body: `
symbol: SPY
interval: 1d
candles:
  - {time: 2024-01-02T00:00:00Z, open: 10, high: 11, low: 9.5, close: 10.5, volume: 1200}
  - {time: 2024-01-03T00:00:00Z, open: 10.5, high: 10.8, low: 10, close: 10.1, volume: 900}
`,
			wantLabel: "SPY",
			wantBars:  2,
		},
		{
			name: "bare yaml list",
			file: "qqq.yml",
			body: `
- {open: 10, high: 11, low: 9.5, close: 10.5}
`,
			wantLabel: "qqq",
			wantBars:  1,
		},
		{
			name:      "json document",
			file:      "iwm.json",
			body:      `{"symbol":"IWM","candles":[{"open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]}`,
			wantLabel: "IWM",
			wantBars:  1,
		},
		{
			name:      "bare json list",
			file:      "dia.json",
			body:      ` [{"open":1,"high":2,"low":0.5,"close":1.5},{"open":1.5,"high":2,"low":1,"close":1.2}]`,
			wantLabel: "dia",
			wantBars:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := LoadFile(writeFile(t, dir, tt.file, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, series.Label)
			assert.Len(t, series.Bars, tt.wantBars)
		})
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.yaml", `
candles:
  - {time: 2024-01-02T00:00:00Z, open: 10, high: 11, low: 9.5, close: 10.5, volume: 1200}
`)
	series, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, series.Bars, 1)

	c := series.Bars[0]
	o, h, l, cl, v := c.OHLCV()
	assert.Equal(t, []float64{10, 11, 9.5, 10.5, 1200}, []float64{o, h, l, cl, v})
	assert.Equal(t, 2024, c.Time.Year())
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "absent.yaml")},
		{"unsupported extension", writeFile(t, dir, "bars.csv", "open,high\n1,2\n")},
		{"empty yaml", writeFile(t, dir, "empty.yaml", "")},
		{"empty json", writeFile(t, dir, "empty.json", "  ")},
		{"malformed json", writeFile(t, dir, "bad.json", `{"candles": [}`)},
		{"wrong yaml shape", writeFile(t, dir, "bad.yaml", "candles: 12")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"open":1,"high":2,"low":0.5,"close":1.5}]`)
	b := writeFile(t, dir, "b.yaml", "- {open: 1, high: 2, low: 0.5, close: 1.5}\n")

	series, err := LoadFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "a", series[0].Label)
	assert.Equal(t, "b", series[1].Label)

	_, err = LoadFiles([]string{a, filepath.Join(dir, "nope.json")})
	assert.Error(t, err)
}

package pattern

// PatternID identifies a detector within one engine. Comparison is case-sensitive.
type PatternID string

// Direction is the bias of a single match
type Direction int

const (
	Neutral Direction = iota
	Bullish
	Bearish
)

func (d Direction) String() string {
	switch d {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Trend classifies recent price direction before a bar
type Trend int

const (
	Sideways Trend = iota
	Up
	Down
)

func (t Trend) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "sideways"
	}
}

func (t Trend) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// MarketContext is the trailing-window snapshot for one bar index.
// It is computed from bars strictly before the index.
type MarketContext struct {
	Trend          Trend   `json:"trend"`
	AvgBody        float64 `json:"avg_body"`
	AvgUpperShadow float64 `json:"avg_upper_shadow"`
	AvgLowerShadow float64 `json:"avg_lower_shadow"`
	AvgShadow      float64 `json:"avg_shadow"`
	AvgRange       float64 `json:"avg_range"`
	AvgRangeNear   float64 `json:"avg_range_near"` // shorter window, used for proximity checks
	AvgVolume      float64 `json:"avg_volume"`
	Volatility     float64 `json:"volatility"`
	LookbackUsed   int     `json:"lookback_used"`
}

// Match is one detected pattern occurrence
type Match struct {
	PatternID  PatternID `json:"pattern_id"`
	Direction  Direction `json:"direction"`
	Strength   Ratio     `json:"strength"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
}

// Bars returns how many bars the match spans
func (m Match) Bars() int { return m.EndIndex - m.StartIndex + 1 }

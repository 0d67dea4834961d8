package pattern

import (
	"math"
	"sort"
)

// ParamKind is the domain family of a tunable parameter
type ParamKind int

const (
	// RatioParam values live in [0, 1]
	RatioParam ParamKind = iota
	// FactorParam values are non-negative multipliers with an upper bound
	FactorParam
	// CountParam values are whole bar counts
	CountParam
)

func (k ParamKind) String() string {
	switch k {
	case FactorParam:
		return "factor"
	case CountParam:
		return "count"
	default:
		return "ratio"
	}
}

// ParamMeta describes one tunable built-in parameter
type ParamMeta struct {
	Name        string
	Kind        ParamKind
	Default     float64
	Min         float64
	Max         float64
	Description string
}

// Validate reports whether v is inside the parameter's domain
func (m ParamMeta) Validate(v float64) error {
	if m.Kind == RatioParam {
		if _, err := NewRatio(v); err != nil {
			return &ValidationError{Field: m.Name, Value: v, Reason: "must be within [0, 1]"}
		}
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < m.Min || v > m.Max {
		return &ValidationError{Field: m.Name, Value: v, Reason: "outside declared domain"}
	}
	if m.Kind == CountParam && v != math.Trunc(v) {
		return &ValidationError{Field: m.Name, Value: v, Reason: "must be a whole number"}
	}
	return nil
}

// Grid enumerates the domain in steps, inclusive of both bounds
func (m ParamMeta) Grid(step float64) []float64 {
	if step <= 0 {
		return []float64{m.Default}
	}
	if m.Kind == CountParam {
		step = math.Max(1, math.Round(step))
	}
	var out []float64
	for i := 0; ; i++ {
		v := m.Min + float64(i)*step
		if v > m.Max+step*1e-9 {
			break
		}
		out = append(out, math.Min(v, m.Max))
	}
	return out
}

const (
	ParamDojiFactor            = "doji_factor"
	ParamBodyShortFactor       = "body_short_factor"
	ParamBodyLongFactor        = "body_long_factor"
	ParamShadowVeryLongFactor  = "shadow_very_long_factor"
	ParamShadowVeryShortFactor = "shadow_very_short_factor"
	ParamNearFactor            = "near_factor"
	ParamFarFactor             = "far_factor"
	ParamEqualFactor           = "equal_factor"
	ParamPenetration           = "penetration"
	ParamColdStartBody         = "cold_start_body"
	ParamMinLookback           = "min_lookback"
)

// paramTable is read-only; defaults follow TA-Lib candle settings.
// shadow_very_long_factor and near_factor differ between references, so both are tunable.
var paramTable = map[string]ParamMeta{
	ParamDojiFactor: {
		Name: ParamDojiFactor, Kind: RatioParam, Default: 0.1, Min: 0, Max: 1,
		Description: "body at most this fraction of the average range counts as doji",
	},
	ParamBodyShortFactor: {
		Name: ParamBodyShortFactor, Kind: FactorParam, Default: 1.0, Min: 0, Max: 10,
		Description: "body below this multiple of the average body counts as short",
	},
	ParamBodyLongFactor: {
		Name: ParamBodyLongFactor, Kind: FactorParam, Default: 1.0, Min: 0, Max: 10,
		Description: "body above this multiple of the average body counts as long",
	},
	ParamShadowVeryLongFactor: {
		Name: ParamShadowVeryLongFactor, Kind: FactorParam, Default: 2.0, Min: 0, Max: 10,
		Description: "shadow above this multiple of the real body counts as very long",
	},
	ParamShadowVeryShortFactor: {
		Name: ParamShadowVeryShortFactor, Kind: RatioParam, Default: 0.1, Min: 0, Max: 1,
		Description: "shadow below this fraction of the average range counts as very short",
	},
	ParamNearFactor: {
		Name: ParamNearFactor, Kind: RatioParam, Default: 0.2, Min: 0, Max: 1,
		Description: "distance below this fraction of the recent average range counts as near",
	},
	ParamFarFactor: {
		Name: ParamFarFactor, Kind: RatioParam, Default: 0.6, Min: 0, Max: 1,
		Description: "distance above this fraction of the recent average range counts as far",
	},
	ParamEqualFactor: {
		Name: ParamEqualFactor, Kind: RatioParam, Default: 0.05, Min: 0, Max: 1,
		Description: "prices within this fraction of the recent average range are equal",
	},
	ParamPenetration: {
		Name: ParamPenetration, Kind: RatioParam, Default: 0.5, Min: 0, Max: 1,
		Description: "fraction of the first body the confirming bar must close into",
	},
	ParamColdStartBody: {
		Name: ParamColdStartBody, Kind: RatioParam, Default: 0.01, Min: 0, Max: 1,
		Description: "doji body limit as a fraction of close when no history is available",
	},
	ParamMinLookback: {
		Name: ParamMinLookback, Kind: CountParam, Default: 3, Min: 0, Max: 500,
		Description: "trend dependent patterns abstain with fewer context bars than this",
	},
}

// LookupParam returns the metadata of a named parameter
func LookupParam(name string) (ParamMeta, bool) {
	m, ok := paramTable[name]
	return m, ok
}

// ParamNames lists every known parameter name in sorted order
func ParamNames() []string {
	names := make([]string, 0, len(paramTable))
	for name := range paramTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params is the resolved threshold set of one built-in detector
type Params struct {
	DojiFactor            float64
	BodyShortFactor       float64
	BodyLongFactor        float64
	ShadowVeryLongFactor  float64
	ShadowVeryShortFactor float64
	NearFactor            float64
	FarFactor             float64
	EqualFactor           float64
	Penetration           float64
	ColdStartBody         float64
	MinLookback           int
}

// DefaultParams returns the documented defaults
func DefaultParams() Params {
	return Params{
		DojiFactor:            paramTable[ParamDojiFactor].Default,
		BodyShortFactor:       paramTable[ParamBodyShortFactor].Default,
		BodyLongFactor:        paramTable[ParamBodyLongFactor].Default,
		ShadowVeryLongFactor:  paramTable[ParamShadowVeryLongFactor].Default,
		ShadowVeryShortFactor: paramTable[ParamShadowVeryShortFactor].Default,
		NearFactor:            paramTable[ParamNearFactor].Default,
		FarFactor:             paramTable[ParamFarFactor].Default,
		EqualFactor:           paramTable[ParamEqualFactor].Default,
		Penetration:           paramTable[ParamPenetration].Default,
		ColdStartBody:         paramTable[ParamColdStartBody].Default,
		MinLookback:           int(paramTable[ParamMinLookback].Default),
	}
}

// Get returns a parameter value by name
func (p *Params) Get(name string) (float64, bool) {
	switch name {
	case ParamDojiFactor:
		return p.DojiFactor, true
	case ParamBodyShortFactor:
		return p.BodyShortFactor, true
	case ParamBodyLongFactor:
		return p.BodyLongFactor, true
	case ParamShadowVeryLongFactor:
		return p.ShadowVeryLongFactor, true
	case ParamShadowVeryShortFactor:
		return p.ShadowVeryShortFactor, true
	case ParamNearFactor:
		return p.NearFactor, true
	case ParamFarFactor:
		return p.FarFactor, true
	case ParamEqualFactor:
		return p.EqualFactor, true
	case ParamPenetration:
		return p.Penetration, true
	case ParamColdStartBody:
		return p.ColdStartBody, true
	case ParamMinLookback:
		return float64(p.MinLookback), true
	}
	return 0, false
}

// set assigns a value that has already been validated
func (p *Params) set(name string, v float64) {
	switch name {
	case ParamDojiFactor:
		p.DojiFactor = v
	case ParamBodyShortFactor:
		p.BodyShortFactor = v
	case ParamBodyLongFactor:
		p.BodyLongFactor = v
	case ParamShadowVeryLongFactor:
		p.ShadowVeryLongFactor = v
	case ParamShadowVeryShortFactor:
		p.ShadowVeryShortFactor = v
	case ParamNearFactor:
		p.NearFactor = v
	case ParamFarFactor:
		p.FarFactor = v
	case ParamEqualFactor:
		p.EqualFactor = v
	case ParamPenetration:
		p.Penetration = v
	case ParamColdStartBody:
		p.ColdStartBody = v
	case ParamMinLookback:
		p.MinLookback = int(v)
	}
}

// Setting overrides one parameter of a built-in
type Setting struct {
	Name  string
	Value float64
}

// Set is shorthand for a Setting literal
func Set(name string, value float64) Setting {
	return Setting{Name: name, Value: value}
}

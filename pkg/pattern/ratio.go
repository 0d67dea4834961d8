package pattern

import (
	"math"
	"strconv"
)

// Ratio is a proportion constrained to [0, 1].
// The zero value is a valid ratio of 0.
type Ratio struct {
	v float64
}

// NewRatio validates v and wraps it
func NewRatio(v float64) (Ratio, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Ratio{}, &ValidationError{Field: "ratio", Value: v, Reason: "must be finite"}
	}
	if v < 0 || v > 1 {
		return Ratio{}, &ValidationError{Field: "ratio", Value: v, Reason: "must be within [0, 1]"}
	}
	return Ratio{v: v}, nil
}

// MustRatio is NewRatio for constants known to be valid; it panics otherwise
func MustRatio(v float64) Ratio {
	r, err := NewRatio(v)
	if err != nil {
		panic(err)
	}
	return r
}

// Value returns the wrapped proportion
func (r Ratio) Value() float64 { return r.v }

func (r Ratio) String() string { return strconv.FormatFloat(r.v, 'f', -1, 64) }

// MarshalJSON encodes the ratio as a plain number
func (r Ratio) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, r.v, 'f', -1, 64), nil
}

// clampStrength turns a heuristic score into a Ratio, saturating at the bounds
func clampStrength(v float64) Ratio {
	switch {
	case math.IsNaN(v) || v < 0:
		return Ratio{}
	case v > 1:
		return Ratio{v: 1}
	}
	return Ratio{v: v}
}

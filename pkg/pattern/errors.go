package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateID is matched by every *DuplicateIDError
	ErrDuplicateID = errors.New("duplicate pattern id")
	// ErrRange is matched by every *RangeError
	ErrRange = errors.New("invalid scan range")
	// ErrInvalidBar is matched by every *BarError
	ErrInvalidBar = errors.New("invalid bar")
)

// ValidationError reports a configuration value outside its declared domain.
// It is only produced while constructing values or building an engine.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateIDError reports two detectors registered under the same id
type DuplicateIDError struct {
	ID PatternID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("pattern %q registered more than once", string(e.ID))
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// RangeError reports a scan range that does not fit the input
type RangeError struct {
	Start, End int
	Len        int
	Reason     string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [%d,%d) over %d bars: %s", e.Start, e.End, e.Len, e.Reason)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// BarError reports a malformed bar found by ValidateBars
type BarError struct {
	Index  int
	Reason string
}

func (e *BarError) Error() string {
	return fmt.Sprintf("bar %d: %s", e.Index, e.Reason)
}

func (e *BarError) Is(target error) bool { return target == ErrInvalidBar }

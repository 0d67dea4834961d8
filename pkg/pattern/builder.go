package pattern

import (
	"github.com/rs/zerolog"
)

type builderEntry struct {
	builtin Builtin
	custom  Detector
}

// Builder assembles an Engine. Errors are collected while adding and
// reported by Build, which never returns a partially built engine.
type Builder[B Bar] struct {
	entries     []builderEntry
	provider    ContextProvider[B]
	minStrength float64
	only        []PatternID
	onlySet     bool
	validate    bool
	logger      zerolog.Logger
	err         error
}

// NewBuilder returns an empty builder using the default SMA context provider
func NewBuilder[B Bar]() *Builder[B] {
	return &Builder[B]{logger: zerolog.Nop()}
}

func (b *Builder[B]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Add registers a built-in with optional parameter overrides
func (b *Builder[B]) Add(kind Kind, settings ...Setting) *Builder[B] {
	bi, err := NewBuiltin(kind, settings...)
	if err != nil {
		b.fail(err)
		return b
	}
	b.entries = append(b.entries, builderEntry{builtin: bi})
	return b
}

// AddKinds registers each kind with its defaults. Presets are built on it.
func (b *Builder[B]) AddKinds(kinds ...Kind) *Builder[B] {
	for _, k := range kinds {
		b.Add(k)
	}
	return b
}

// AddCustom registers a caller supplied detector
func (b *Builder[B]) AddCustom(d Detector) *Builder[B] {
	switch {
	case d == nil:
		b.fail(&ValidationError{Field: "detector", Reason: "nil detector"})
	case d.ID() == "":
		b.fail(&ValidationError{Field: "detector.id", Reason: "empty pattern id"})
	case d.MinBars() < 1:
		b.fail(&ValidationError{Field: string(d.ID()) + ".min_bars", Value: float64(d.MinBars()), Reason: "must be at least 1"})
	default:
		b.entries = append(b.entries, builderEntry{custom: d})
	}
	return b
}

// WithContextProvider replaces the default SMA provider
func (b *Builder[B]) WithContextProvider(p ContextProvider[B]) *Builder[B] {
	b.provider = p
	return b
}

// MinStrength drops matches whose strength is below v
func (b *Builder[B]) MinStrength(v float64) *Builder[B] {
	r, err := NewRatio(v)
	if err != nil {
		b.fail(&ValidationError{Field: "min_strength", Value: v, Reason: "must be within [0, 1]"})
		return b
	}
	b.minStrength = r.Value()
	return b
}

// OnlyPatterns keeps only matches with the given ids. Detectors outside the
// list still run.
func (b *Builder[B]) OnlyPatterns(ids ...PatternID) *Builder[B] {
	b.only = append(b.only, ids...)
	b.onlySet = true
	return b
}

// ValidateBars enables Engine.Check
func (b *Builder[B]) ValidateBars(on bool) *Builder[B] {
	b.validate = on
	return b
}

// WithLogger sets the logger used while building
func (b *Builder[B]) WithLogger(logger zerolog.Logger) *Builder[B] {
	b.logger = logger.With().Str("component", "pattern-builder").Logger()
	return b
}

// Build validates the configuration and returns an immutable engine
func (b *Builder[B]) Build() (*Engine[B], error) {
	if b.err != nil {
		return nil, b.err
	}

	seen := make(map[PatternID]struct{}, len(b.entries))
	e := &Engine[B]{
		slots:       make([]slot, 0, len(b.entries)),
		provider:    b.provider,
		minStrength: b.minStrength,
		validate:    b.validate,
	}
	for _, entry := range b.entries {
		s := slot{custom: -1}
		if entry.custom != nil {
			s.id = entry.custom.ID()
			s.minBars = entry.custom.MinBars()
			s.custom = len(e.customs)
			e.customs = append(e.customs, entry.custom)
		} else {
			s.id = entry.builtin.ID()
			s.minBars = entry.builtin.MinBars()
			s.builtin = entry.builtin
		}
		if _, dup := seen[s.id]; dup {
			return nil, &DuplicateIDError{ID: s.id}
		}
		seen[s.id] = struct{}{}
		e.slots = append(e.slots, s)
		e.maxMinBars = max(e.maxMinBars, s.minBars)
	}

	if e.provider == nil {
		e.provider = DefaultSMAProvider[B]()
	}
	if b.onlySet {
		e.allow = make(map[PatternID]struct{}, len(b.only))
		for _, id := range b.only {
			e.allow[id] = struct{}{}
			if _, ok := seen[id]; !ok {
				b.logger.Warn().Str("pattern", string(id)).Msg("Allow-list names a pattern no detector produces")
			}
		}
	}

	if len(e.slots) == 0 {
		b.logger.Warn().Msg("Engine built without detectors")
	}
	b.logger.Debug().
		Int("detectors", len(e.slots)).
		Int("custom", len(e.customs)).
		Int("max_min_bars", e.maxMinBars).
		Float64("min_strength", e.minStrength).
		Msg("Engine built")
	return e, nil
}

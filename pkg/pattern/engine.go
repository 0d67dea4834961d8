package pattern

// slot is one registered detector in registration order.
// custom is -1 for built-ins, which are dispatched without an interface call.
type slot struct {
	id      PatternID
	minBars int
	builtin Builtin
	custom  int
}

// Engine scans bar series with a fixed detector set. It is immutable once
// built and safe for concurrent use.
type Engine[B Bar] struct {
	slots       []slot
	customs     []Detector
	provider    ContextProvider[B]
	minStrength float64
	allow       map[PatternID]struct{}
	validate    bool
	maxMinBars  int
}

// Detectors returns the registered pattern ids in registration order
func (e *Engine[B]) Detectors() []PatternID {
	ids := make([]PatternID, len(e.slots))
	for i, s := range e.slots {
		ids[i] = s.id
	}
	return ids
}

// Provider returns the context provider the engine scans with
func (e *Engine[B]) Provider() ContextProvider[B] { return e.provider }

// MaxMinBars returns the largest history requirement among the detectors
func (e *Engine[B]) MaxMinBars() int { return e.maxMinBars }

// Check validates bars when the engine was built with bar validation enabled
func (e *Engine[B]) Check(bars []B) error {
	if !e.validate {
		return nil
	}
	return ValidateBars(bars)
}

// ComputeContexts returns one context per bar.
// A context stays valid only while bars up to its index are unchanged.
func (e *Engine[B]) ComputeContexts(bars []B) []MarketContext {
	return e.provider.ComputeAll(bars)
}

// ComputeContextAt returns the context of a single index
func (e *Engine[B]) ComputeContextAt(bars []B, index int) MarketContext {
	return e.provider.ComputeAt(bars, index)
}

// Scan returns every match in index order, then registration order
func (e *Engine[B]) Scan(bars []B) []Match {
	contexts := e.provider.ComputeAll(bars)
	view := e.barView(bars)
	var out []Match
	for i := range bars {
		out = e.scanAt(bars, view, 0, i, &contexts[i], out)
	}
	return out
}

// ScanAt returns the matches ending at index, given its context. Custom
// detectors see only the trailing window the largest of them needs, so the
// cost does not grow with the length of bars.
func (e *Engine[B]) ScanAt(bars []B, index int, ctx MarketContext) []Match {
	if index < 0 || index >= len(bars) {
		return nil
	}
	start := max(0, index-e.maxMinBars+1)
	return e.scanAt(bars, e.barView(bars[start:index+1]), start, index, &ctx, nil)
}

// ScanRange scans indices in [start, end). contexts must cover end, or be nil
// to have them computed per index.
func (e *Engine[B]) ScanRange(bars []B, start, end int, contexts []MarketContext) ([]Match, error) {
	switch {
	case start < 0:
		return nil, &RangeError{Start: start, End: end, Len: len(bars), Reason: "negative start"}
	case start > end:
		return nil, &RangeError{Start: start, End: end, Len: len(bars), Reason: "start after end"}
	case end > len(bars):
		return nil, &RangeError{Start: start, End: end, Len: len(bars), Reason: "end beyond input"}
	case contexts != nil && len(contexts) < end:
		return nil, &RangeError{Start: start, End: end, Len: len(contexts), Reason: "contexts do not cover range"}
	}
	if start == end {
		return nil, nil
	}

	view := e.barView(bars)
	var out []Match
	for i := start; i < end; i++ {
		if contexts != nil {
			out = e.scanAt(bars, view, 0, i, &contexts[i], out)
			continue
		}
		ctx := e.provider.ComputeAt(bars, i)
		out = e.scanAt(bars, view, 0, i, &ctx, out)
	}
	return out, nil
}

// ScanGrouped returns one slice of matches per bar index; indices without
// matches hold a nil slice.
func (e *Engine[B]) ScanGrouped(bars []B) [][]Match {
	contexts := e.provider.ComputeAll(bars)
	view := e.barView(bars)
	groups := make([][]Match, len(bars))
	for i := range bars {
		groups[i] = e.scanAt(bars, view, 0, i, &contexts[i], nil)
	}
	return groups
}

// barView builds the []Bar list custom detectors consume. Engines without
// custom detectors never allocate it.
func (e *Engine[B]) barView(bars []B) []Bar {
	if len(e.customs) == 0 {
		return nil
	}
	view := make([]Bar, len(bars))
	for i := range bars {
		view[i] = bars[i]
	}
	return view
}

// scanAt evaluates every eligible detector at index. view holds bars from
// absolute position viewStart on and is what custom detectors receive.
func (e *Engine[B]) scanAt(bars []B, view []Bar, viewStart, index int, ctx *MarketContext, dst []Match) []Match {
	for k := range e.slots {
		s := &e.slots[k]
		if index+1 < s.minBars {
			continue
		}

		var (
			m  Match
			ok bool
		)
		if s.custom < 0 {
			m, ok = DetectBuiltin(&s.builtin, bars, index, ctx)
		} else {
			m, ok = e.customs[s.custom].Detect(view, index-viewStart, ctx)
			m.PatternID = s.id
			m.EndIndex = index
			// start must lie inside the detector's declared window
			m.StartIndex = min(max(m.StartIndex+viewStart, index-s.minBars+1), index)
		}
		if ok && e.keep(m) {
			dst = append(dst, m)
		}
	}
	return dst
}

// keep applies the post filters. They never influence which detectors run.
func (e *Engine[B]) keep(m Match) bool {
	if m.Strength.Value() < e.minStrength {
		return false
	}
	if e.allow != nil {
		if _, ok := e.allow[m.PatternID]; !ok {
			return false
		}
	}
	return true
}

package pattern

import (
	"iter"
)

// Iter yields (index, matches at index) lazily. Contexts are computed one index
// at a time, so breaking out of the loop skips all remaining work. Every call
// returns a fresh sequence over the same bars.
func (e *Engine[B]) Iter(bars []B) iter.Seq2[int, []Match] {
	return func(yield func(int, []Match) bool) {
		var view []Bar
		for i := range bars {
			if view == nil && len(e.customs) > 0 {
				view = e.barView(bars)
			}
			ctx := e.provider.ComputeAt(bars, i)
			if !yield(i, e.scanAt(bars, view, 0, i, &ctx, nil)) {
				return
			}
		}
	}
}

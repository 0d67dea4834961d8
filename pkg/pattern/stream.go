package pattern

import (
	"sync"
)

// StreamOption configures a Stream
type StreamOption func(*streamConfig)

type streamConfig struct {
	history int
}

// WithHistory bounds how many bars a stream retains. Zero keeps everything.
func WithHistory(n int) StreamOption {
	return func(c *streamConfig) { c.history = n }
}

// Stream feeds bars one at a time and reports the matches completed by each
// new bar. Match indices are absolute positions in the pushed sequence.
type Stream[B Bar] struct {
	engine  *Engine[B]
	mu      sync.Mutex
	bars    []B
	view    []Bar // bars as seen by custom detectors; nil without them
	offset  int   // absolute index of bars[0]
	history int
}

// NewStream creates an incremental scanner over e. A bounded history must
// cover the provider lookback plus the largest detector window, otherwise the
// results would differ from a batch scan.
func (e *Engine[B]) NewStream(opts ...StreamOption) (*Stream[B], error) {
	var cfg streamConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.history < 0 {
		return nil, &ValidationError{Field: "stream.history", Value: float64(cfg.history), Reason: "must not be negative"}
	}
	if need := e.provider.Lookback() + e.maxMinBars; cfg.history > 0 && cfg.history < need {
		return nil, &ValidationError{Field: "stream.history", Value: float64(cfg.history), Reason: "shorter than context lookback plus detector window"}
	}
	return &Stream[B]{engine: e, history: cfg.history}, nil
}

// Push appends bar and returns the matches ending at it
func (s *Stream[B]) Push(bar B) []Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bars = append(s.bars, bar)
	if len(s.engine.customs) > 0 {
		s.view = append(s.view, bar)
	}
	s.trim()

	idx := len(s.bars) - 1
	ctx := s.engine.provider.ComputeAt(s.bars, idx)
	matches := s.engine.scanAt(s.bars, s.view, 0, idx, &ctx, nil)
	for i := range matches {
		matches[i].StartIndex += s.offset
		matches[i].EndIndex += s.offset
	}
	return matches
}

// trim drops the oldest bars once the buffer holds twice the history,
// so copying is amortized over many pushes.
func (s *Stream[B]) trim() {
	if s.history == 0 || len(s.bars) < 2*s.history {
		return
	}
	drop := len(s.bars) - s.history
	n := copy(s.bars, s.bars[drop:])
	clear(s.bars[n:])
	s.bars = s.bars[:n]
	if s.view != nil {
		n = copy(s.view, s.view[drop:])
		clear(s.view[n:])
		s.view = s.view[:n]
	}
	s.offset += drop
}

// Len returns the total number of bars pushed
func (s *Stream[B]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset + len(s.bars)
}

// Next returns the context the next pushed bar will be evaluated with
func (s *Stream[B]) Next() MarketContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.provider.ComputeAt(s.bars, len(s.bars))
}

// Reset forgets all pushed bars
func (s *Stream[B]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bars = nil
	s.view = nil
	s.offset = 0
}

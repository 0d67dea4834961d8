package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"candlescan/pkg/pattern"
)

// ErrNotScanned is recorded for series skipped because the scan was cancelled
var ErrNotScanned = errors.New("series not scanned")

// DetectorPanicError wraps a panic raised while scanning one series
type DetectorPanicError struct {
	Label string
	Value any
}

func (e *DetectorPanicError) Error() string {
	return fmt.Sprintf("series %q: detector panicked: %v", e.Label, e.Value)
}

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// Series is one labeled bar sequence
type Series[B pattern.Bar] struct {
	Label string
	Bars  []B
}

// Result holds the matches of one successfully scanned series
type Result struct {
	Label   string
	Bars    int
	Matches []pattern.Match
	Elapsed time.Duration
}

// Report pairs successes and failures, both keyed by label
type Report struct {
	RunID    string
	Results  map[string]Result
	Failures map[string]error
	Elapsed  time.Duration
}

// Scanner runs one engine over many series in parallel. A failing series
// never affects the others.
type Scanner[B pattern.Bar] struct {
	engine       *pattern.Engine[B]
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
	logger       zerolog.Logger
}

// NewScanner creates a new scanner. A zero timeout disables the deadline.
func NewScanner[B pattern.Bar](engine *pattern.Engine[B], workers int, timeout time.Duration, logger zerolog.Logger) *Scanner[B] {
	if workers < 1 {
		workers = 1
	}
	return &Scanner[B]{
		engine:  engine,
		workers: workers,
		timeout: timeout,
		logger:  logger.With().Str("component", "scanner").Logger(),
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner[B]) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

type outcome struct {
	label  string
	result Result
	err    error
}

// Scan scans every series. Labels must be unique and non-empty; that is the
// only error returned. Per-series problems land in Report.Failures.
func (s *Scanner[B]) Scan(ctx context.Context, series []Series[B]) (*Report, error) {
	startTime := time.Now()

	seen := make(map[string]struct{}, len(series))
	for _, sr := range series {
		if sr.Label == "" {
			return nil, fmt.Errorf("series label must not be empty")
		}
		if _, dup := seen[sr.Label]; dup {
			return nil, fmt.Errorf("duplicate series label %q", sr.Label)
		}
		seen[sr.Label] = struct{}{}
	}

	report := &Report{
		RunID:    uuid.NewString(),
		Results:  make(map[string]Result, len(series)),
		Failures: make(map[string]error),
	}
	logger := s.logger.With().Str("run_id", report.RunID).Logger()
	if len(series) == 0 {
		report.Elapsed = time.Since(startTime)
		return report, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.Info().Int("series", len(series)).Int("workers", s.workers).Msg("Scan started")

	// Channels
	jobChan := make(chan Series[B], len(series))
	resultChan := make(chan outcome, len(series))

	for _, sr := range series {
		jobChan <- sr
	}
	close(jobChan)

	var scannedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sr := range jobChan {
				if err := ctx.Err(); err != nil {
					resultChan <- outcome{label: sr.Label, err: fmt.Errorf("%w: %w", ErrNotScanned, err)}
					continue
				}
				resultChan <- s.scanOne(sr)

				count := atomic.AddInt64(&scannedCount, 1)
				if s.progressFunc != nil {
					s.progressFunc(int(count), len(series))
				}
			}
		}()
	}

	// Close result channel when all workers are done
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for out := range resultChan {
		if out.err != nil {
			report.Failures[out.label] = out.err
			logger.Warn().Str("series", out.label).Err(out.err).Msg("Series failed")
			continue
		}
		report.Results[out.label] = out.result
	}

	report.Elapsed = time.Since(startTime)
	logger.Info().
		Int("succeeded", len(report.Results)).
		Int("failed", len(report.Failures)).
		Dur("elapsed", report.Elapsed).
		Msg("Scan finished")
	return report, nil
}

// scanOne isolates a single series: invalid bars and detector panics become
// that series' failure.
func (s *Scanner[B]) scanOne(sr Series[B]) (out outcome) {
	out.label = sr.Label
	defer func() {
		if r := recover(); r != nil {
			out = outcome{label: sr.Label, err: &DetectorPanicError{Label: sr.Label, Value: r}}
		}
	}()

	start := time.Now()
	if err := s.engine.Check(sr.Bars); err != nil {
		out.err = fmt.Errorf("validating %s: %w", sr.Label, err)
		return out
	}
	out.result = Result{
		Label:   sr.Label,
		Bars:    len(sr.Bars),
		Matches: s.engine.Scan(sr.Bars),
		Elapsed: time.Since(start),
	}
	return out
}

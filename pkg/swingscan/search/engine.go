package search

import (
	"fmt"

	"github.com/himanishpuri/SwingScan/pkg/models"
)

// Logger is the subset of pkg/logger the engine writes to.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Engine runs run-searches over one immutable table. It holds no mutable
// state, so a single Engine may be shared by concurrent callers.
type Engine struct {
	table *models.Table
	log   Logger
}

type Option func(*Engine)

// WithLogger routes per-search debug lines to log.
func WithLogger(log Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func NewEngine(table *models.Table, opts ...Option) *Engine {
	if table == nil {
		table = models.NewTable(nil)
	}
	e := &Engine{table: table, log: nopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the table the engine searches.
func (e *Engine) Table() *models.Table { return e.table }

// Len is shorthand for Table().Len().
func (e *Engine) Len() int { return e.table.Len() }

// SearchContinuityAboveValue returns the first index in [indexBegin,
// indexEnd) where channel data stays above threshold for winLength
// consecutive samples.
func (e *Engine) SearchContinuityAboveValue(data string, indexBegin, indexEnd int, threshold float64, winLength int) (Result, error) {
	c, err := e.checkForward(data, indexBegin, indexEnd, winLength)
	if err != nil {
		return notFound(), fmt.Errorf("search above %s: %w", data, err)
	}

	res := notFound()
	if stop, ok := scan(e.table, above(c, threshold), indexBegin, indexEnd, winLength, forward); ok {
		res = found(stop - winLength)
	}
	e.log.Debugf("above %s [%d,%d) > %g win=%d: %s", c, indexBegin, indexEnd, threshold, winLength, res)
	return res, nil
}

// SearchContinuityWithinRange returns the first index in [indexBegin,
// indexEnd) where thresholdLo < data < thresholdHi holds for winLength
// consecutive samples.
func (e *Engine) SearchContinuityWithinRange(data string, indexBegin, indexEnd int, thresholdLo, thresholdHi float64, winLength int) (Result, error) {
	c, err := e.checkForward(data, indexBegin, indexEnd, winLength)
	if err != nil {
		return notFound(), fmt.Errorf("search within %s: %w", data, err)
	}

	res := notFound()
	if stop, ok := scan(e.table, within(c, thresholdLo, thresholdHi), indexBegin, indexEnd, winLength, forward); ok {
		res = found(stop - winLength)
	}
	e.log.Debugf("within %s [%d,%d) (%g,%g) win=%d: %s", c, indexBegin, indexEnd, thresholdLo, thresholdHi, winLength, res)
	return res, nil
}

// BackSearchContinuityWithinRange walks from indexBegin down to indexEnd
// (exclusive, indexBegin > indexEnd) and returns the highest index of the
// first run of winLength samples inside (thresholdLo, thresholdHi). Pass
// indexEnd = -1 to include sample 0.
func (e *Engine) BackSearchContinuityWithinRange(data string, indexBegin, indexEnd int, thresholdLo, thresholdHi float64, winLength int) (Result, error) {
	c, err := e.checkBackward(data, indexBegin, indexEnd, winLength)
	if err != nil {
		return notFound(), fmt.Errorf("back search within %s: %w", data, err)
	}

	res := notFound()
	if stop, ok := scan(e.table, within(c, thresholdLo, thresholdHi), indexBegin, indexEnd, winLength, backward); ok {
		res = found(stop + winLength)
	}
	e.log.Debugf("back %s [%d,%d) (%g,%g) win=%d: %s", c, indexBegin, indexEnd, thresholdLo, thresholdHi, winLength, res)
	return res, nil
}

// SearchContinuityAboveValueTwoSignals returns the first index where data1 >
// threshold1 and data2 > threshold2 both hold over the same winLength
// samples.
//
// Each channel is scanned on its own. When the two runs end at different
// indices the earlier one cannot be part of a shared run, so both scans
// restart at the start of the later run. The floor strictly increases on
// every retry.
func (e *Engine) SearchContinuityAboveValueTwoSignals(data1, data2 string, indexBegin, indexEnd int, threshold1, threshold2 float64, winLength int) (Result, error) {
	c2, err := models.ParseChannel(data2)
	if err != nil {
		return notFound(), fmt.Errorf("two-signal search %s: %w", data2, err)
	}
	c1, err := e.checkForward(data1, indexBegin, indexEnd, winLength)
	if err != nil {
		return notFound(), fmt.Errorf("two-signal search %s: %w", data1, err)
	}

	w1, w2 := above(c1, threshold1), above(c2, threshold2)
	res := notFound()
	floor, retries := indexBegin, 0
	for {
		stop1, ok := scan(e.table, w1, floor, indexEnd, winLength, forward)
		if !ok {
			break
		}
		stop2, ok := scan(e.table, w2, floor, indexEnd, winLength, forward)
		if !ok {
			break
		}
		if stop1 == stop2 {
			res = found(stop1 - winLength)
			break
		}
		floor = max(stop1, stop2) - winLength
		retries++
	}
	e.log.Debugf("two %s>%g %s>%g [%d,%d) win=%d: %s after %d retries",
		c1, threshold1, c2, threshold2, indexBegin, indexEnd, winLength, res, retries)
	return res, nil
}

// SearchMultiContinuityWithinRange returns every disjoint run of winLength
// samples inside (thresholdLo, thresholdHi) in [indexBegin, indexEnd), in
// index order. Scanning resumes right after each match, so runs are never
// merged or overlapped.
func (e *Engine) SearchMultiContinuityWithinRange(data string, indexBegin, indexEnd int, thresholdLo, thresholdHi float64, winLength int) (Result, error) {
	c, err := e.checkForward(data, indexBegin, indexEnd, winLength)
	if err != nil {
		return notFound(), fmt.Errorf("multi search within %s: %w", data, err)
	}

	w := within(c, thresholdLo, thresholdHi)
	var runs []Range
	for floor := indexBegin; ; {
		stop, ok := scan(e.table, w, floor, indexEnd, winLength, forward)
		if !ok {
			break
		}
		runs = append(runs, Range{Start: stop - winLength, End: stop - 1})
		floor = stop
	}

	res := notFound()
	if len(runs) > 0 {
		res = foundMany(runs)
	}
	e.log.Debugf("multi %s [%d,%d) (%g,%g) win=%d: %d runs", c, indexBegin, indexEnd, thresholdLo, thresholdHi, winLength, len(runs))
	return res, nil
}

func (e *Engine) checkForward(data string, begin, end, winLength int) (models.Channel, error) {
	c, err := models.ParseChannel(data)
	if err != nil {
		return 0, err
	}
	if winLength <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWindow, winLength)
	}
	if begin < 0 || end > e.table.Len() || begin > end {
		return 0, fmt.Errorf("%w: forward [%d,%d) over %d samples", ErrInvalidRange, begin, end, e.table.Len())
	}
	return c, nil
}

func (e *Engine) checkBackward(data string, begin, end, winLength int) (models.Channel, error) {
	c, err := models.ParseChannel(data)
	if err != nil {
		return 0, err
	}
	if winLength <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWindow, winLength)
	}
	if begin >= e.table.Len() || end < -1 || begin < end {
		return 0, fmt.Errorf("%w: backward [%d,%d) over %d samples", ErrInvalidRange, begin, end, e.table.Len())
	}
	return c, nil
}

package search

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/himanishpuri/SwingScan/pkg/models"
)

func swingEngine() *Engine {
	return NewEngine(tableFromAx(0, 0, 2, 2, 2, 0, 2, 2, 2, 2))
}

func TestSearchContinuityAboveValue(t *testing.T) {
	e := swingEngine()

	res, err := e.SearchContinuityAboveValue("ax", 0, 10, 1, 3)
	if err != nil {
		t.Fatalf("SearchContinuityAboveValue failed: %v", err)
	}
	if res.Kind != Found || res.Index != 2 {
		t.Errorf("Expected found at 2, got %s", res)
	}

	res, err = e.SearchContinuityAboveValue("ax", 0, 10, 1, 5)
	if err != nil {
		t.Fatalf("SearchContinuityAboveValue failed: %v", err)
	}
	if res.Found() {
		t.Errorf("Expected not found for window 5, got %s", res)
	}
}

func TestSearchContinuityAboveValueAtIndexZero(t *testing.T) {
	e := NewEngine(tableFromAx(5, 5, 5, 0))

	res, err := e.SearchContinuityAboveValue("ax", 0, 4, 1, 3)
	if err != nil {
		t.Fatalf("SearchContinuityAboveValue failed: %v", err)
	}
	if res.Kind != Found || res.Index != 0 {
		t.Errorf("Expected found at 0, got %s", res)
	}
}

func TestSearchContinuityWithinRange(t *testing.T) {
	e := NewEngine(tableFromAx(0, 5, 5, 5, 2, 2, 2, 0))

	res, err := e.SearchContinuityWithinRange("ax", 0, 8, 1, 3, 3)
	if err != nil {
		t.Fatalf("SearchContinuityWithinRange failed: %v", err)
	}
	if res.Kind != Found || res.Index != 4 {
		t.Errorf("Expected found at 4, got %s", res)
	}
}

func TestBackSearchContinuityWithinRange(t *testing.T) {
	e := swingEngine()

	tests := []struct {
		name       string
		begin, end int
		win        int
		kind       Kind
		index      int
	}{
		{"trailing run", 9, -1, 3, Found, 9},
		{"run before gap", 5, -1, 3, Found, 4},
		{"reaches index 0", 4, -1, 3, Found, 4},
		{"exclusive end cuts run", 3, 0, 3, NotFound, 0},
		{"empty interval", 3, 3, 1, NotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.BackSearchContinuityWithinRange("ax", tt.begin, tt.end, 1, 3, tt.win)
			if err != nil {
				t.Fatalf("BackSearchContinuityWithinRange failed: %v", err)
			}
			if res.Kind != tt.kind {
				t.Fatalf("Kind = %v, expected %v (%s)", res.Kind, tt.kind, res)
			}
			if res.Kind == Found && res.Index != tt.index {
				t.Errorf("Index = %d, expected %d", res.Index, tt.index)
			}
		})
	}
}

func twoSignalEngine(ay []float64) *Engine {
	ax := []float64{0, 2, 2, 2, 0, 2, 2, 2, 2, 2}
	samples := make([]models.Sample, len(ax))
	for i := range ax {
		samples[i] = models.Sample{Timestamp: float64(i), Ax: ax[i], Ay: ay[i]}
	}
	return NewEngine(models.NewTable(samples))
}

func TestSearchContinuityAboveValueTwoSignals(t *testing.T) {
	e := twoSignalEngine([]float64{0, 0, 2, 2, 2, 2, 2, 2, 0, 0})

	res, err := e.SearchContinuityAboveValueTwoSignals("ax", "ay", 0, 10, 1, 1, 3)
	if err != nil {
		t.Fatalf("SearchContinuityAboveValueTwoSignals failed: %v", err)
	}
	if res.Kind != Found || res.Index != 5 {
		t.Errorf("Expected found at 5, got %s", res)
	}
}

func TestSearchContinuityAboveValueTwoSignalsNoOverlap(t *testing.T) {
	e := twoSignalEngine([]float64{0, 0, 2, 2, 2, 2, 2, 0, 2, 2})

	res, err := e.SearchContinuityAboveValueTwoSignals("ax", "ay", 0, 10, 1, 1, 3)
	if err != nil {
		t.Fatalf("SearchContinuityAboveValueTwoSignals failed: %v", err)
	}
	if res.Found() {
		t.Errorf("Expected not found, got %s", res)
	}
}

func TestSearchContinuityAboveValueTwoSignalsSameChannel(t *testing.T) {
	e := swingEngine()

	res, err := e.SearchContinuityAboveValueTwoSignals("ax", "ax", 0, 10, 1, 1, 3)
	if err != nil {
		t.Fatalf("SearchContinuityAboveValueTwoSignals failed: %v", err)
	}
	if res.Kind != Found || res.Index != 2 {
		t.Errorf("Expected found at 2, got %s", res)
	}
}

func TestSearchMultiContinuityWithinRange(t *testing.T) {
	e := swingEngine()

	res, err := e.SearchMultiContinuityWithinRange("ax", 0, 10, 1, 3, 3)
	if err != nil {
		t.Fatalf("SearchMultiContinuityWithinRange failed: %v", err)
	}
	expected := []Range{{Start: 2, End: 4}, {Start: 6, End: 8}}
	if res.Kind != FoundMany || !reflect.DeepEqual(res.Ranges, expected) {
		t.Errorf("Expected %v, got %s", expected, res)
	}
}

func TestSearchMultiContinuityWithinRangeAdjacentRuns(t *testing.T) {
	// Six qualifying samples in a row hold two back-to-back runs of three.
	e := NewEngine(tableFromAx(2, 2, 2, 2, 2, 2, 2))

	res, err := e.SearchMultiContinuityWithinRange("ax", 0, 7, 1, 3, 3)
	if err != nil {
		t.Fatalf("SearchMultiContinuityWithinRange failed: %v", err)
	}
	expected := []Range{{Start: 0, End: 2}, {Start: 3, End: 5}}
	if !reflect.DeepEqual(res.Ranges, expected) {
		t.Errorf("Expected %v, got %s", expected, res)
	}
}

func TestSearchMultiContinuityWithinRangeNone(t *testing.T) {
	e := swingEngine()

	res, err := e.SearchMultiContinuityWithinRange("ax", 0, 10, 5, 6, 1)
	if err != nil {
		t.Fatalf("SearchMultiContinuityWithinRange failed: %v", err)
	}
	if res.Kind != NotFound || res.Ranges != nil {
		t.Errorf("Expected not found without ranges, got %+v", res)
	}
}

// every public operation, bound to the same arguments apart from channel
func allOperations(e *Engine, ch string, win int) map[string]func() (Result, error) {
	return map[string]func() (Result, error){
		"above":  func() (Result, error) { return e.SearchContinuityAboveValue(ch, 0, 10, 1, win) },
		"within": func() (Result, error) { return e.SearchContinuityWithinRange(ch, 0, 10, 1, 3, win) },
		"back":   func() (Result, error) { return e.BackSearchContinuityWithinRange(ch, 9, -1, 1, 3, win) },
		"two-1":  func() (Result, error) { return e.SearchContinuityAboveValueTwoSignals(ch, "ax", 0, 10, 1, 1, win) },
		"two-2":  func() (Result, error) { return e.SearchContinuityAboveValueTwoSignals("ax", ch, 0, 10, 1, 1, win) },
		"multi":  func() (Result, error) { return e.SearchMultiContinuityWithinRange(ch, 0, 10, 1, 3, win) },
	}
}

func TestInvalidChannel(t *testing.T) {
	e := swingEngine()

	for name, op := range allOperations(e, "ab", 3) {
		t.Run(name, func(t *testing.T) {
			res, err := op()
			if !errors.Is(err, ErrInvalidChannel) {
				t.Fatalf("Expected ErrInvalidChannel, got %v", err)
			}
			if res.Found() {
				t.Errorf("Expected no partial result, got %s", res)
			}
		})
	}
}

func TestInvalidWindow(t *testing.T) {
	e := swingEngine()

	for _, win := range []int{0, -3} {
		for name, op := range allOperations(e, "ax", win) {
			t.Run(fmt.Sprintf("%s/%d", name, win), func(t *testing.T) {
				if _, err := op(); !errors.Is(err, ErrInvalidWindow) {
					t.Errorf("Expected ErrInvalidWindow, got %v", err)
				}
			})
		}
	}
}

func TestWindowLongerThanInterval(t *testing.T) {
	e := swingEngine()

	for name, op := range allOperations(e, "ax", 11) {
		t.Run(name, func(t *testing.T) {
			res, err := op()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if res.Found() {
				t.Errorf("Expected not found, got %s", res)
			}
		})
	}
}

func TestInvalidRange(t *testing.T) {
	e := swingEngine()

	tests := []struct {
		name string
		run  func() (Result, error)
	}{
		{"forward negative begin", func() (Result, error) { return e.SearchContinuityAboveValue("ax", -1, 10, 1, 3) }},
		{"forward end past table", func() (Result, error) { return e.SearchContinuityWithinRange("ax", 0, 11, 1, 3, 3) }},
		{"forward reversed", func() (Result, error) { return e.SearchMultiContinuityWithinRange("ax", 9, 0, 1, 3, 3) }},
		{"two-signal reversed", func() (Result, error) {
			return e.SearchContinuityAboveValueTwoSignals("ax", "ay", 5, 2, 1, 1, 1)
		}},
		{"backward begin past table", func() (Result, error) { return e.BackSearchContinuityWithinRange("ax", 10, -1, 1, 3, 3) }},
		{"backward end below -1", func() (Result, error) { return e.BackSearchContinuityWithinRange("ax", 9, -2, 1, 3, 3) }},
		{"backward given forward bounds", func() (Result, error) { return e.BackSearchContinuityWithinRange("ax", 0, 9, 1, 3, 3) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.run(); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestEmptyTable(t *testing.T) {
	e := NewEngine(nil)

	res, err := e.SearchContinuityAboveValue("ax", 0, 0, 1, 1)
	if err != nil || res.Found() {
		t.Errorf("Expected not found on empty table, got %s, %v", res, err)
	}
	if _, err := e.BackSearchContinuityWithinRange("ax", 0, -1, 1, 3, 1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange for backward search on empty table, got %v", err)
	}
}

func TestIdempotent(t *testing.T) {
	e := swingEngine()

	first, _ := e.SearchMultiContinuityWithinRange("ax", 0, 10, 1, 3, 3)
	for i := 0; i < 5; i++ {
		again, _ := e.SearchMultiContinuityWithinRange("ax", 0, 10, 1, 3, 3)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Call %d returned %s, first call returned %s", i, again, first)
		}
	}
}

func TestConcurrentSearches(t *testing.T) {
	e := swingEngine()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.SearchContinuityAboveValue("ax", 0, 10, 1, 3)
			if err != nil {
				errs <- err
				return
			}
			if res.Index != 2 {
				errs <- fmt.Errorf("got %s", res)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func TestEngineLogsSearches(t *testing.T) {
	log := &recordingLogger{}
	e := NewEngine(tableFromAx(0, 2, 2), WithLogger(log))

	if _, err := e.SearchContinuityAboveValue("ax", 0, 3, 1, 2); err != nil {
		t.Fatalf("SearchContinuityAboveValue failed: %v", err)
	}
	if len(log.lines) != 1 {
		t.Fatalf("Expected 1 debug line, got %d", len(log.lines))
	}
	if want := "above ax [0,3) > 1 win=2: found at 1"; log.lines[0] != want {
		t.Errorf("Debug line = %q, expected %q", log.lines[0], want)
	}
}

func TestResultString(t *testing.T) {
	tests := []struct {
		res      Result
		expected string
	}{
		{notFound(), "not found"},
		{found(0), "found at 0"},
		{foundMany([]Range{{2, 4}, {6, 8}}), "found (2,4) (6,8)"},
	}
	for _, tt := range tests {
		if got := tt.res.String(); got != tt.expected {
			t.Errorf("String() = %q, expected %q", got, tt.expected)
		}
	}
	if (Range{Start: 6, End: 8}).Len() != 3 {
		t.Error("Range.Len should count both ends")
	}
}

// Reference implementations: check every window directly.

func allAccept(vals []float64, from, to int, accept func(float64) bool) bool {
	for i := from; i <= to; i++ {
		if !accept(vals[i]) {
			return false
		}
	}
	return true
}

func naiveForward(vals []float64, begin, end, win int, accept func(float64) bool) (int, bool) {
	for s := begin; s+win <= end; s++ {
		if allAccept(vals, s, s+win-1, accept) {
			return s, true
		}
	}
	return 0, false
}

func naiveBackward(vals []float64, begin, end, win int, accept func(float64) bool) (int, bool) {
	for h := begin; h-win >= end; h-- {
		if allAccept(vals, h-win+1, h, accept) {
			return h, true
		}
	}
	return 0, false
}

func naiveMulti(vals []float64, begin, end, win int, accept func(float64) bool) []Range {
	var out []Range
	for floor := begin; ; {
		s, ok := naiveForward(vals, floor, end, win, accept)
		if !ok {
			return out
		}
		out = append(out, Range{Start: s, End: s + win - 1})
		floor = s + win
	}
}

func randomSamples(rng *rand.Rand, n int) []models.Sample {
	levels := []float64{-1, 0, 1, 2, 3}
	out := make([]models.Sample, n)
	for i := range out {
		out[i] = models.Sample{
			Timestamp: float64(i),
			Ax:        levels[rng.Intn(len(levels))],
			Ay:        levels[rng.Intn(len(levels))],
		}
	}
	return out
}

func TestSearchesMatchReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(40)
		samples := randomSamples(rng, n)
		e := NewEngine(models.NewTable(samples))
		ax := make([]float64, n)
		ay := make([]float64, n)
		for i, s := range samples {
			ax[i], ay[i] = s.Ax, s.Ay
		}

		win := 1 + rng.Intn(6)
		begin := rng.Intn(n)
		end := begin + rng.Intn(n-begin+1)
		gt1 := func(v float64) bool { return v > 1 }
		gt0 := func(v float64) bool { return v > 0 }
		in := func(v float64) bool { return v > 0 && v < 3 }

		res, err := e.SearchContinuityAboveValue("ax", begin, end, 1, win)
		if err != nil {
			t.Fatal(err)
		}
		if s, ok := naiveForward(ax, begin, end, win, gt1); ok != res.Found() || (ok && s != res.Index) {
			t.Fatalf("above %v [%d,%d) win=%d: got %s, reference %d %v", ax, begin, end, win, res, s, ok)
		}
		if res.Found() && res.Index > begin && gt1(ax[res.Index-1]) {
			t.Fatalf("above %v: sample before match at %d also qualifies", ax, res.Index)
		}

		res, err = e.SearchContinuityWithinRange("ax", begin, end, 0, 3, win)
		if err != nil {
			t.Fatal(err)
		}
		if s, ok := naiveForward(ax, begin, end, win, in); ok != res.Found() || (ok && s != res.Index) {
			t.Fatalf("within %v [%d,%d) win=%d: got %s, reference %d %v", ax, begin, end, win, res, s, ok)
		}

		hi := rng.Intn(n)
		lo := hi - 1 - rng.Intn(hi+1)
		res, err = e.BackSearchContinuityWithinRange("ax", hi, lo, 0, 3, win)
		if err != nil {
			t.Fatal(err)
		}
		if h, ok := naiveBackward(ax, hi, lo, win, in); ok != res.Found() || (ok && h != res.Index) {
			t.Fatalf("back %v [%d,%d) win=%d: got %s, reference %d %v", ax, hi, lo, win, res, h, ok)
		}

		res, err = e.SearchMultiContinuityWithinRange("ax", begin, end, 0, 3, win)
		if err != nil {
			t.Fatal(err)
		}
		if want := naiveMulti(ax, begin, end, win, in); !reflect.DeepEqual(want, res.Ranges) {
			t.Fatalf("multi %v [%d,%d) win=%d: got %s, reference %v", ax, begin, end, win, res, want)
		}
		for i, r := range res.Ranges {
			if r.Len() != win {
				t.Fatalf("multi run %v has %d samples, expected %d", r, r.Len(), win)
			}
			if i > 0 && r.Start <= res.Ranges[i-1].End {
				t.Fatalf("multi runs overlap: %v", res.Ranges)
			}
		}

		both := make([]float64, n)
		for i := range both {
			if gt1(ax[i]) && gt0(ay[i]) {
				both[i] = 1
			}
		}
		res, err = e.SearchContinuityAboveValueTwoSignals("ax", "ay", begin, end, 1, 0, win)
		if err != nil {
			t.Fatal(err)
		}
		isOne := func(v float64) bool { return v == 1 }
		if s, ok := naiveForward(both, begin, end, win, isOne); ok != res.Found() || (ok && s != res.Index) {
			t.Fatalf("two ax=%v ay=%v [%d,%d) win=%d: got %s, reference %d %v", ax, ay, begin, end, win, res, s, ok)
		}
	}
}

package search

import (
	"math"

	"github.com/himanishpuri/SwingScan/pkg/models"
)

type direction int

const (
	forward  direction = 1
	backward direction = -1
)

func (d direction) String() string {
	if d == backward {
		return "backward"
	}
	return "forward"
}

// window is the per-sample predicate lo < v < hi on one channel.
type window struct {
	channel models.Channel
	lo, hi  float64
}

func above(c models.Channel, threshold float64) window {
	return window{channel: c, lo: threshold, hi: math.Inf(1)}
}

func within(c models.Channel, lo, hi float64) window {
	return window{channel: c, lo: lo, hi: hi}
}

// NaN never qualifies since both comparisons are false.
func (w window) accepts(v float64) bool {
	return v > w.lo && v < w.hi
}

// scan walks from begin towards end (exclusive) counting consecutive samples
// accepted by w. It stops as soon as winLength of them have been seen and
// returns the index one step past the last qualifying sample in the
// direction of travel. A rejected sample only resets the counter, so every
// index is visited at most once.
//
// ok is false when the interval runs out, including the early exit taken
// once fewer indices remain than samples still needed.
func scan(t *models.Table, w window, begin, end, winLength int, dir direction) (stop int, ok bool) {
	step := int(dir)
	samples := 0
	for i := begin; i != end; i += step {
		if remaining := (end - i) * step; remaining < winLength-samples {
			return 0, false
		}
		if !w.accepts(t.Value(i, w.channel)) {
			samples = 0
			continue
		}
		samples++
		if samples == winLength {
			return i + step, true
		}
	}
	return 0, false
}

package profile

import (
	"fmt"

	"github.com/himanishpuri/SwingScan/pkg/swingscan/search"
)

// Searcher is the part of *search.Engine a profile needs.
type Searcher interface {
	Len() int
	SearchContinuityAboveValue(data string, indexBegin, indexEnd int, threshold float64, winLength int) (search.Result, error)
	SearchContinuityWithinRange(data string, indexBegin, indexEnd int, thresholdLo, thresholdHi float64, winLength int) (search.Result, error)
	BackSearchContinuityWithinRange(data string, indexBegin, indexEnd int, thresholdLo, thresholdHi float64, winLength int) (search.Result, error)
	SearchContinuityAboveValueTwoSignals(data1, data2 string, indexBegin, indexEnd int, threshold1, threshold2 float64, winLength int) (search.Result, error)
	SearchMultiContinuityWithinRange(data string, indexBegin, indexEnd int, thresholdLo, thresholdHi float64, winLength int) (search.Result, error)
}

// PhaseResult is the outcome of one phase. Begin and End are the bounds the
// search actually ran with. Skipped is set when the phase's After
// dependency found nothing, in which case Result is NotFound.
type PhaseResult struct {
	Phase   string
	Op      Op
	Begin   int
	End     int
	Skipped bool
	Result  search.Result
}

// Anchor is the index a later phase chains from: the match index, or the
// start of the first run for a multi search.
func (r PhaseResult) Anchor() (int, bool) {
	switch r.Result.Kind {
	case search.Found:
		return r.Result.Index, true
	case search.FoundMany:
		return r.Result.Ranges[0].Start, true
	}
	return 0, false
}

// Run evaluates the phases of p in order. Bounds past the table are clamped
// to it, so one profile can run over recordings of any length.
func Run(s Searcher, p *Profile) ([]PhaseResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := s.Len()
	out := make([]PhaseResult, 0, len(p.Phases))
	anchors := make(map[string]PhaseResult, len(p.Phases))
	for _, ph := range p.Phases {
		pr := PhaseResult{Phase: ph.Name, Op: ph.Op}

		begin := ph.Begin
		if ph.After != "" {
			at, ok := anchors[ph.After].Anchor()
			if !ok {
				pr.Skipped = true
				out = append(out, pr)
				anchors[ph.Name] = pr
				continue
			}
			begin += at
		}
		pr.Begin, pr.End = bounds(ph, begin, n)

		res, err := runPhase(s, ph, pr.Begin, pr.End)
		if err != nil {
			return out, fmt.Errorf("phase %q: %w", ph.Name, err)
		}
		pr.Result = res
		out = append(out, pr)
		anchors[ph.Name] = pr
	}
	return out, nil
}

func bounds(ph Phase, begin, n int) (int, int) {
	if ph.Op == OpBack {
		end := -1
		if ph.End != nil {
			end = *ph.End
		}
		begin = max(min(begin, n-1), -1)
		end = max(min(end, begin), -1)
		return begin, end
	}

	end := n
	if ph.End != nil && *ph.End >= 0 {
		end = min(*ph.End, n)
	}
	begin = min(max(begin, 0), end)
	return begin, end
}

func runPhase(s Searcher, ph Phase, begin, end int) (search.Result, error) {
	switch ph.Op {
	case OpAbove:
		return s.SearchContinuityAboveValue(ph.Channel, begin, end, ph.Threshold, ph.Window)
	case OpWithin:
		return s.SearchContinuityWithinRange(ph.Channel, begin, end, ph.Lo, ph.Hi, ph.Window)
	case OpBack:
		return s.BackSearchContinuityWithinRange(ph.Channel, begin, end, ph.Lo, ph.Hi, ph.Window)
	case OpTwo:
		return s.SearchContinuityAboveValueTwoSignals(ph.Channels[0], ph.Channels[1], begin, end, ph.Thresholds[0], ph.Thresholds[1], ph.Window)
	case OpMulti:
		return s.SearchMultiContinuityWithinRange(ph.Channel, begin, end, ph.Lo, ph.Hi, ph.Window)
	}
	return search.Result{}, fmt.Errorf("%w: unknown op %q", ErrInvalidProfile, ph.Op)
}

package search

import (
	"fmt"
	"strings"
)

// Kind tags a Result.
type Kind int

const (
	NotFound Kind = iota
	Found
	FoundMany
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Found:
		return "found"
	case FoundMany:
		return "found_many"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Range is one qualifying run. Both ends are inclusive sample indices.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of samples in the run.
func (r Range) Len() int { return r.End - r.Start + 1 }

// Result is the outcome of a search. Index is meaningful only for Found and
// Ranges only for FoundMany; a NotFound result carries neither, so index 0
// is always a real match.
type Result struct {
	Kind   Kind
	Index  int
	Ranges []Range
}

func notFound() Result            { return Result{Kind: NotFound} }
func found(index int) Result      { return Result{Kind: Found, Index: index} }
func foundMany(rs []Range) Result { return Result{Kind: FoundMany, Ranges: rs} }

// Found reports whether the search matched at least once.
func (r Result) Found() bool { return r.Kind != NotFound }

func (r Result) String() string {
	switch r.Kind {
	case Found:
		return fmt.Sprintf("found at %d", r.Index)
	case FoundMany:
		parts := make([]string, len(r.Ranges))
		for i, rg := range r.Ranges {
			parts[i] = fmt.Sprintf("(%d,%d)", rg.Start, rg.End)
		}
		return "found " + strings.Join(parts, " ")
	default:
		return "not found"
	}
}

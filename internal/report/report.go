// Package report renders search results, phase results and recording lists
// for the command line.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/himanishpuri/SwingScan/pkg/models"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/search"
	"gonum.org/v1/gonum/floats"
)

// Format is an output style.
type Format string

const (
	Text   Format = "text"
	Legacy Format = "legacy"
	JSON   Format = "json"
)

// notFoundText stands in for a missing index in legacy output.
const notFoundText = "could not find index to meet criteria"

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, Legacy, JSON:
		return f, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown output %q (expected text, legacy or json)", s)
	}
}

// Search is one search invocation and its outcome.
type Search struct {
	Op       string
	Channels []string
	Begin    int
	End      int
	Result   search.Result
}

// Writer renders to w in one format. Table, when set, is used to annotate
// matches with timestamps and run peaks.
type Writer struct {
	w      io.Writer
	format Format
	table  *models.Table
}

func NewWriter(w io.Writer, format Format, table *models.Table) *Writer {
	if format == "" {
		format = Text
	}
	return &Writer{w: w, format: format, table: table}
}

// Search writes a single search result.
func (rw *Writer) Search(s Search) error {
	switch rw.format {
	case Legacy:
		return rw.lines(legacyLines(s.Op, s.Result))
	case JSON:
		return rw.encode(rw.toJSON(s))
	default:
		_, err := fmt.Fprintf(rw.w, "%s %s [%d,%d): %s\n", s.Op, strings.Join(s.Channels, ","), s.Begin, s.End, rw.describe(s.Channels, s.Result))
		return err
	}
}

// Phases writes the results of running p.
func (rw *Writer) Phases(p *profile.Profile, results []profile.PhaseResult) error {
	switch rw.format {
	case Legacy:
		var lines []string
		for _, r := range results {
			lines = append(lines, legacyLines(string(r.Op), r.Result)...)
		}
		return rw.lines(lines)
	case JSON:
		out := phasesJSON{Profile: p.Name, Phases: make([]phaseJSON, len(results))}
		for i, r := range results {
			out.Phases[i] = phaseJSON{
				Phase:   r.Phase,
				Skipped: r.Skipped,
				searchJSON: rw.toJSON(Search{
					Op:       string(r.Op),
					Channels: phaseChannels(p, r.Phase),
					Begin:    r.Begin,
					End:      r.End,
					Result:   r.Result,
				}),
			}
		}
		return rw.encode(out)
	default:
		if _, err := fmt.Fprintf(rw.w, "profile %s: %d phases over %s samples\n", p.Name, len(results), humanize.Comma(int64(rw.table.Len()))); err != nil {
			return err
		}
		for _, r := range results {
			desc := rw.describe(phaseChannels(p, r.Phase), r.Result)
			if r.Skipped {
				desc = "skipped (dependency not found)"
			}
			if _, err := fmt.Fprintf(rw.w, "  %-16s %-6s [%d,%d): %s\n", r.Phase, r.Op, r.Begin, r.End, desc); err != nil {
				return err
			}
		}
		return nil
	}
}

// Recordings writes a recording list.
func (rw *Writer) Recordings(recs []models.Recording) error {
	if rw.format == JSON {
		if recs == nil {
			recs = []models.Recording{}
		}
		return rw.encode(recs)
	}
	if len(recs) == 0 {
		_, err := fmt.Fprintln(rw.w, "no recordings")
		return err
	}
	for _, r := range recs {
		device := r.Device
		if device == "" {
			device = "-"
		}
		if _, err := fmt.Fprintf(rw.w, "%s  %-20s %-12s %10s samples  %s\n",
			r.ID, r.Name, device, humanize.Comma(int64(r.Samples)), humanize.Time(r.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func phaseChannels(p *profile.Profile, name string) []string {
	ph, ok := p.Phase(name)
	if !ok {
		return nil
	}
	if len(ph.Channels) > 0 {
		return ph.Channels
	}
	return []string{ph.Channel}
}

// legacyLines renders a result in the line format older tooling parses: a bare
// index or the not-found text, and for multi searches "index: (start,end)"
// pairs closed by a not-found pair.
func legacyLines(op string, r search.Result) []string {
	switch r.Kind {
	case search.Found:
		return []string{fmt.Sprint(r.Index)}
	case search.FoundMany:
		lines := make([]string, 0, len(r.Ranges)+1)
		for _, rg := range r.Ranges {
			lines = append(lines, fmt.Sprintf("index: (%d,%d)", rg.Start, rg.End))
		}
		return append(lines, legacyNotFoundPair())
	default:
		if op == string(profile.OpMulti) {
			return []string{legacyNotFoundPair()}
		}
		return []string{notFoundText}
	}
}

func legacyNotFoundPair() string {
	return fmt.Sprintf("index: (%s,%s)", notFoundText, notFoundText)
}

func (rw *Writer) describe(channels []string, r search.Result) string {
	switch r.Kind {
	case search.Found:
		if ts, ok := rw.timestamp(r.Index); ok {
			return fmt.Sprintf("found at %d (t=%g)", r.Index, ts)
		}
		return fmt.Sprintf("found at %d", r.Index)
	case search.FoundMany:
		var b strings.Builder
		fmt.Fprintf(&b, "%d runs", len(r.Ranges))
		for _, rg := range r.Ranges {
			fmt.Fprintf(&b, " (%d,%d)", rg.Start, rg.End)
			if len(channels) == 1 {
				if peak, ok := rw.peak(channels[0], rg); ok {
					fmt.Fprintf(&b, " peak=%g", peak)
				}
			}
		}
		return b.String()
	default:
		return "not found"
	}
}

func (rw *Writer) timestamp(i int) (float64, bool) {
	if i < 0 || i >= rw.table.Len() {
		return 0, false
	}
	return rw.table.Value(i, models.Timestamp), true
}

// peak is the largest channel value inside a run.
func (rw *Writer) peak(channel string, rg search.Range) (float64, bool) {
	c, err := models.ParseChannel(channel)
	if err != nil || rg.Start < 0 || rg.End >= rw.table.Len() {
		return 0, false
	}
	col := rw.table.Column(c, rg.Start, rg.End+1)
	if len(col) == 0 {
		return 0, false
	}
	return floats.Max(col), true
}

type runJSON struct {
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Peak      *float64 `json:"peak,omitempty"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

type searchJSON struct {
	Op        string    `json:"op"`
	Channels  []string  `json:"channels,omitempty"`
	Begin     int       `json:"begin"`
	End       int       `json:"end"`
	Result    string    `json:"result"`
	Index     *int      `json:"index,omitempty"`
	Timestamp *float64  `json:"timestamp,omitempty"`
	Runs      []runJSON `json:"runs,omitempty"`
}

type phaseJSON struct {
	Phase   string `json:"phase"`
	Skipped bool   `json:"skipped,omitempty"`
	searchJSON
}

type phasesJSON struct {
	Profile string      `json:"profile"`
	Phases  []phaseJSON `json:"phases"`
}

func (rw *Writer) toJSON(s Search) searchJSON {
	out := searchJSON{
		Op:       s.Op,
		Channels: s.Channels,
		Begin:    s.Begin,
		End:      s.End,
		Result:   s.Result.Kind.String(),
	}
	switch s.Result.Kind {
	case search.Found:
		idx := s.Result.Index
		out.Index = &idx
		if ts, ok := rw.timestamp(idx); ok {
			out.Timestamp = &ts
		}
	case search.FoundMany:
		out.Runs = make([]runJSON, len(s.Result.Ranges))
		for i, rg := range s.Result.Ranges {
			run := runJSON{Start: rg.Start, End: rg.End}
			if ts, ok := rw.timestamp(rg.Start); ok {
				run.Timestamp = &ts
			}
			if len(s.Channels) == 1 {
				if peak, ok := rw.peak(s.Channels[0], rg); ok {
					run.Peak = &peak
				}
			}
			out.Runs[i] = run
		}
	}
	return out
}

func (rw *Writer) encode(v any) error {
	enc := json.NewEncoder(rw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (rw *Writer) lines(lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(rw.w, l); err != nil {
			return err
		}
	}
	return nil
}

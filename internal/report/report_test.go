package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/himanishpuri/SwingScan/pkg/models"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/search"
)

const notFoundPair = "index: (could not find index to meet criteria,could not find index to meet criteria)"

func testTable() *models.Table {
	ax := []float64{0, 0, 2, 3, 2, 0, 2, 2, 4, 2}
	samples := make([]models.Sample, len(ax))
	for i, v := range ax {
		samples[i] = models.Sample{Timestamp: float64(i * 10), Ax: v}
	}
	return models.NewTable(samples)
}

var (
	foundAt2 = search.Result{Kind: search.Found, Index: 2}
	twoRuns  = search.Result{Kind: search.FoundMany, Ranges: []search.Range{{Start: 2, End: 4}, {Start: 6, End: 8}}}
	missing  = search.Result{Kind: search.NotFound}
)

func render(t *testing.T, format Format, s Search) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewWriter(&buf, format, testTable()).Search(s); err != nil {
		t.Fatalf("Search render failed: %v", err)
	}
	return buf.String()
}

func TestSearchText(t *testing.T) {
	tests := []struct {
		name     string
		search   Search
		expected string
	}{
		{
			"found",
			Search{Op: "above", Channels: []string{"ax"}, Begin: 0, End: 10, Result: foundAt2},
			"above ax [0,10): found at 2 (t=20)\n",
		},
		{
			"runs with peaks",
			Search{Op: "multi", Channels: []string{"ax"}, Begin: 0, End: 10, Result: twoRuns},
			"multi ax [0,10): 2 runs (2,4) peak=3 (6,8) peak=4\n",
		},
		{
			"not found",
			Search{Op: "two", Channels: []string{"ax", "ay"}, Begin: 0, End: 5, Result: missing},
			"two ax,ay [0,5): not found\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, Text, tt.search); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSearchLegacy(t *testing.T) {
	tests := []struct {
		name     string
		search   Search
		expected []string
	}{
		{"found", Search{Op: "above", Result: foundAt2}, []string{"2"}},
		{"back not found", Search{Op: "back", Result: missing}, []string{"could not find index to meet criteria"}},
		{"multi", Search{Op: "multi", Result: twoRuns}, []string{"index: (2,4)", "index: (6,8)", notFoundPair}},
		{"multi not found", Search{Op: "multi", Result: missing}, []string{notFoundPair}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, Legacy, tt.search)
			expected := strings.Join(tt.expected, "\n") + "\n"
			if got != expected {
				t.Errorf("Expected %q, got %q", expected, got)
			}
		})
	}
}

func TestSearchJSON(t *testing.T) {
	out := render(t, JSON, Search{Op: "multi", Channels: []string{"ax"}, Begin: 0, End: 10, Result: twoRuns})

	var got struct {
		Op     string `json:"op"`
		Result string `json:"result"`
		Index  *int   `json:"index"`
		Runs   []struct {
			Start     int     `json:"start"`
			End       int     `json:"end"`
			Peak      float64 `json:"peak"`
			Timestamp float64 `json:"timestamp"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Invalid JSON %q: %v", out, err)
	}
	if got.Op != "multi" || got.Result != "found_many" || got.Index != nil {
		t.Errorf("Unexpected header: %+v", got)
	}
	if len(got.Runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(got.Runs))
	}
	if got.Runs[1].Start != 6 || got.Runs[1].End != 8 || got.Runs[1].Peak != 4 || got.Runs[1].Timestamp != 60 {
		t.Errorf("Unexpected second run: %+v", got.Runs[1])
	}

	out = render(t, JSON, Search{Op: "above", Channels: []string{"ax"}, Result: missing})
	if strings.Contains(out, `"index"`) {
		t.Errorf("Not-found result must not carry an index: %s", out)
	}
	if !strings.Contains(out, `"result": "not_found"`) {
		t.Errorf("Expected not_found result: %s", out)
	}

	out = render(t, JSON, Search{Op: "above", Channels: []string{"ax"}, Result: search.Result{Kind: search.Found, Index: 0}})
	if !strings.Contains(out, `"index": 0`) {
		t.Errorf("Index 0 must be reported: %s", out)
	}
}

func TestPhases(t *testing.T) {
	p := &profile.Profile{
		Name: "swing",
		Phases: []profile.Phase{
			{Name: "rise", Op: profile.OpAbove, Channel: "ax", Window: 3},
			{Name: "bands", Op: profile.OpMulti, Channel: "ax", Window: 3},
			{Name: "late", Op: profile.OpAbove, Channel: "ax", Window: 3, After: "rise"},
		},
	}
	results := []profile.PhaseResult{
		{Phase: "rise", Op: profile.OpAbove, Begin: 0, End: 10, Result: foundAt2},
		{Phase: "bands", Op: profile.OpMulti, Begin: 0, End: 10, Result: twoRuns},
		{Phase: "late", Op: profile.OpAbove, Skipped: true},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewWriter(&buf, Text, testTable()).Phases(p, results); err != nil {
			t.Fatalf("Phases failed: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"profile swing: 3 phases over 10 samples",
			"found at 2 (t=20)",
			"(6,8) peak=4",
			"skipped (dependency not found)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("legacy", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewWriter(&buf, Legacy, nil).Phases(p, results); err != nil {
			t.Fatalf("Phases failed: %v", err)
		}
		expected := strings.Join([]string{
			"2",
			"index: (2,4)",
			"index: (6,8)",
			notFoundPair,
			"could not find index to meet criteria",
		}, "\n") + "\n"
		if buf.String() != expected {
			t.Errorf("Expected %q, got %q", expected, buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewWriter(&buf, JSON, testTable()).Phases(p, results); err != nil {
			t.Fatalf("Phases failed: %v", err)
		}
		var got struct {
			Profile string `json:"profile"`
			Phases  []struct {
				Phase    string   `json:"phase"`
				Op       string   `json:"op"`
				Skipped  bool     `json:"skipped"`
				Channels []string `json:"channels"`
				Result   string   `json:"result"`
			} `json:"phases"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if got.Profile != "swing" || len(got.Phases) != 3 {
			t.Fatalf("Unexpected document: %+v", got)
		}
		if got.Phases[1].Op != "multi" || got.Phases[1].Result != "found_many" || got.Phases[1].Channels[0] != "ax" {
			t.Errorf("Unexpected bands phase: %+v", got.Phases[1])
		}
		if !got.Phases[2].Skipped || got.Phases[2].Result != "not_found" {
			t.Errorf("Unexpected skipped phase: %+v", got.Phases[2])
		}
	})
}

func TestRecordings(t *testing.T) {
	recs := []models.Recording{
		{ID: "0b5f8a2e-6a43-4c1e-9f5e-2d7c1c1e4a10", Name: "driver-01", Device: "imu-a", Samples: 12345, CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "7d1c3f9a-3c11-4b7b-8f0e-5a2b6c9d0e21", Name: "putt-02", Samples: 80, CreatedAt: time.Now()},
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf, Text, nil).Recordings(recs); err != nil {
		t.Fatalf("Recordings failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"driver-01", "12,345 samples", "putt-02", " - "} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := NewWriter(&buf, Text, nil).Recordings(nil); err != nil {
		t.Fatalf("Recordings failed: %v", err)
	}
	if buf.String() != "no recordings\n" {
		t.Errorf("Unexpected empty listing %q", buf.String())
	}

	buf.Reset()
	if err := NewWriter(&buf, JSON, nil).Recordings(nil); err != nil {
		t.Fatalf("Recordings failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", buf.String())
	}

	buf.Reset()
	if err := NewWriter(&buf, JSON, nil).Recordings(recs); err != nil {
		t.Fatalf("Recordings failed: %v", err)
	}
	var decoded []models.Recording
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Samples != 12345 || decoded[1].Name != "putt-02" {
		t.Errorf("Unexpected decoded recordings: %+v", decoded)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", Text, false},
		{"text", Text, false},
		{"LEGACY", Legacy, false},
		{"json", JSON, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

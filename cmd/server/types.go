package main

import (
	"fmt"

	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
)

// MaxProfileBytes bounds the body of a phases request.
const MaxProfileBytes = 64 << 10

// SearchRequest is the body of POST /api/recordings/{id}/search. End may be
// omitted to search to the end of the recording (or down to sample 0 for a
// back search); bounds past the recording are clamped.
type SearchRequest struct {
	Op         string    `json:"op"`
	Channel    string    `json:"channel,omitempty"`
	Channels   []string  `json:"channels,omitempty"`
	Begin      int       `json:"begin"`
	End        *int      `json:"end,omitempty"`
	Threshold  float64   `json:"threshold,omitempty"`
	Thresholds []float64 `json:"thresholds,omitempty"`
	Lo         float64   `json:"lo,omitempty"`
	Hi         float64   `json:"hi,omitempty"`
	Window     int       `json:"window"`
}

// Profile wraps the request as a one-phase profile and validates it.
func (r *SearchRequest) Profile() (*profile.Profile, error) {
	if r.Op == "" {
		return nil, fmt.Errorf("op is required")
	}
	p := &profile.Profile{
		Name: "request",
		Phases: []profile.Phase{{
			Name:       r.Op,
			Op:         profile.Op(r.Op),
			Channel:    r.Channel,
			Channels:   r.Channels,
			Begin:      r.Begin,
			End:        r.End,
			Threshold:  r.Threshold,
			Thresholds: r.Thresholds,
			Lo:         r.Lo,
			Hi:         r.Hi,
			Window:     r.Window,
		}},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// MetricsResponse is the body of GET /api/health/metrics.
type MetricsResponse struct {
	Status         string `json:"status"`
	DatabasePath   string `json:"database_path"`
	RecordingCount int    `json:"recording_count"`
	SampleCount    int    `json:"sample_count"`
}

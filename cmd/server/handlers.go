package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/himanishpuri/SwingScan/internal/report"
	"github.com/himanishpuri/SwingScan/pkg/logger"
	"github.com/himanishpuri/SwingScan/pkg/swingscan"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/search"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/storage"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service swingscan.Service
	config  *ServerConfig
	log     swingscan.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service swingscan.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrRecordingNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrInvalidChannel),
		errors.Is(err, search.ErrInvalidWindow),
		errors.Is(err, search.ErrInvalidRange),
		errors.Is(err, profile.ErrInvalidProfile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "SwingScan API",
		"version": version,
		"endpoints": map[string]string{
			"health":     "GET /health",
			"metrics":    "GET /api/health/metrics",
			"recordings": "GET /api/recordings",
			"recording":  "GET /api/recordings/{id}",
			"search":     "POST /api/recordings/{id}/search",
			"phases":     "POST /api/recordings/{id}/phases",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListRecordings(r.Context())
	if err != nil {
		s.log.Errorf("Failed to list recordings: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	samples := 0
	for _, rec := range recs {
		samples += rec.Samples
	}
	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:         "healthy",
		DatabasePath:   s.config.DBPath,
		RecordingCount: len(recs),
		SampleCount:    samples,
	})
}

// handleListRecordings handles GET /api/recordings
func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.ListRecordings(r.Context())
	if err != nil {
		s.log.Errorf("Failed to list recordings: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve recordings")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := report.NewWriter(w, report.JSON, nil).Recordings(recs); err != nil {
		s.log.Errorf("Failed to write recordings: %v", err)
	}
}

// handleGetRecording handles GET /api/recordings/{id}
func (s *Server) handleGetRecording(w http.ResponseWriter, r *http.Request) {
	sw, ok := s.loadSwing(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, sw.Recording)
}

// handleSearch handles POST /api/recordings/{id}/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxProfileBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	p, err := req.Profile()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sw, ok := s.loadSwing(w, r)
	if !ok {
		return
	}
	results, err := profile.Run(sw, p)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	res := results[0]
	channels := req.Channels
	if len(channels) == 0 {
		channels = []string{req.Channel}
	}
	s.writeReport(w, func(rw *report.Writer) error {
		return rw.Search(report.Search{
			Op:       string(res.Op),
			Channels: channels,
			Begin:    res.Begin,
			End:      res.End,
			Result:   res.Result,
		})
	}, sw)
}

// handlePhases handles POST /api/recordings/{id}/phases. The body is a YAML
// profile; an empty body runs the default profile.
func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxProfileBytes))
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	p := profile.Default()
	if len(bytes.TrimSpace(body)) > 0 {
		if p, err = profile.Parse(bytes.NewReader(body)); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sw, ok := s.loadSwing(w, r)
	if !ok {
		return
	}
	results, err := profile.Run(sw, p)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.writeReport(w, func(rw *report.Writer) error { return rw.Phases(p, results) }, sw)
}

func (s *Server) loadSwing(w http.ResponseWriter, r *http.Request) (*swingscan.Swing, bool) {
	sw, err := s.service.LoadSwing(r.Context(), r.PathValue("id"))
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.log.Errorf("Failed to load recording %s: %v", r.PathValue("id"), err)
		}
		s.respondError(w, code, err.Error())
		return nil, false
	}
	return sw, true
}

// writeReport renders into a buffer first so a render failure can still
// produce an error status.
func (s *Server) writeReport(w http.ResponseWriter, render func(*report.Writer) error, sw *swingscan.Swing) {
	var buf bytes.Buffer
	if err := render(report.NewWriter(&buf, report.JSON, sw.Table())); err != nil {
		s.log.Errorf("Failed to render report: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to render result")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

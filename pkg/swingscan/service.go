// Package swingscan loads swing recordings from CSV, WAV or a recording
// database and runs run-searches and phase profiles over them.
package swingscan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/himanishpuri/SwingScan/pkg/logger"
	"github.com/himanishpuri/SwingScan/pkg/models"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/loader"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/search"
)

// Swing is one loaded recording. The embedded Engine answers searches over
// it.
type Swing struct {
	*search.Engine
	Source    string
	Format    Format
	Recording *models.Recording // set for database sources
}

// swingService is the default implementation of the Service interface.
type swingService struct {
	log    Logger
	config *Config

	mu      sync.Mutex
	storage Storage
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if _, err := ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}

	return &swingService{
		log:     cfg.Logger,
		config:  cfg,
		storage: cfg.Storage,
	}, nil
}

// LoadSwing reads source. With FormatAuto, ".csv" and ".wav" files are read
// from disk and anything else is looked up as a recording id or name.
func (s *swingService) LoadSwing(ctx context.Context, source string) (*Swing, error) {
	format := s.formatOf(source)

	var (
		tbl *models.Table
		rec *models.Recording
		err error
	)
	switch format {
	case FormatCSV:
		tbl, err = loader.LoadCSV(ctx, source)
	case FormatWAV:
		tbl, err = loader.LoadWAV(ctx, source, loader.WAVOptions{
			AccelFullScale: s.config.AccelFullScale,
			GyroFullScale:  s.config.GyroFullScale,
		})
	case FormatSQLite:
		tbl, rec, err = s.loadRecording(ctx, source)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load swing: %w", err)
	}

	s.log.Infof("Loaded %s samples from %s (%s)", humanize.Comma(int64(tbl.Len())), source, format)
	return &Swing{
		Engine:    search.NewEngine(tbl, search.WithLogger(s.log)),
		Source:    source,
		Format:    format,
		Recording: rec,
	}, nil
}

// DetectPhases loads source and runs p over it. A nil profile runs
// profile.Default().
func (s *swingService) DetectPhases(ctx context.Context, source string, p *profile.Profile) ([]profile.PhaseResult, error) {
	if p == nil {
		p = profile.Default()
	}

	sw, err := s.LoadSwing(ctx, source)
	if err != nil {
		return nil, err
	}

	results, err := profile.Run(sw, p)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}

	found := 0
	for _, r := range results {
		if r.Result.Found() {
			found++
		}
	}
	s.log.Infof("Profile %q: %d of %d phases found", p.Name, found, len(results))
	return results, nil
}

// ImportRecording reads a CSV or WAV file and stores it in the recording
// database under name.
func (s *swingService) ImportRecording(ctx context.Context, source, name, device string) (string, error) {
	format := s.formatOf(source)
	if format == FormatSQLite {
		return "", fmt.Errorf("import needs a .csv or .wav file, got %q", source)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	sw, err := s.LoadSwing(ctx, source)
	if err != nil {
		return "", err
	}

	stor, err := s.store()
	if err != nil {
		return "", err
	}
	id, err := stor.ImportRecording(ctx, name, device, sw.Table())
	if err != nil {
		return "", fmt.Errorf("failed to import recording: %w", err)
	}

	s.log.Infof("Imported %s as %s (id=%s)", source, name, id)
	return id, nil
}

func (s *swingService) ListRecordings(ctx context.Context) ([]models.Recording, error) {
	stor, err := s.store()
	if err != nil {
		return nil, err
	}
	return stor.ListRecordings(ctx)
}

// Close releases the recording database if one was opened.
func (s *swingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage == nil {
		return nil
	}
	err := s.storage.Close()
	s.storage = nil
	return err
}

func (s *swingService) formatOf(source string) Format {
	if s.config.Format != FormatAuto && s.config.Format != "" {
		return s.config.Format
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		return FormatCSV
	case ".wav":
		return FormatWAV
	default:
		return FormatSQLite
	}
}

func (s *swingService) loadRecording(ctx context.Context, idOrName string) (*models.Table, *models.Recording, error) {
	stor, err := s.store()
	if err != nil {
		return nil, nil, err
	}

	rec, err := stor.GetRecording(ctx, idOrName)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := stor.LoadTable(ctx, rec.ID)
	if err != nil {
		return nil, nil, err
	}
	return tbl, rec, nil
}

// store opens the recording database on first use, so file sources never
// touch it.
func (s *swingService) store() (Storage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage != nil {
		return s.storage, nil
	}
	stor, err := NewSQLiteStorage(s.config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	s.log.Debugf("Opened recording database %s", s.config.DBPath)
	s.storage = stor
	return stor, nil
}

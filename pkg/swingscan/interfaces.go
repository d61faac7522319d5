package swingscan

import (
	"context"

	"github.com/himanishpuri/SwingScan/pkg/models"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/profile"
)

type Service interface {
	LoadSwing(ctx context.Context, source string) (*Swing, error)
	DetectPhases(ctx context.Context, source string, p *profile.Profile) ([]profile.PhaseResult, error)
	ImportRecording(ctx context.Context, source, name, device string) (string, error)
	ListRecordings(ctx context.Context) ([]models.Recording, error)
	Close() error
}

// Storage is a recording database. SQLite sources are read through it.
type Storage interface {
	ListRecordings(ctx context.Context) ([]models.Recording, error)
	GetRecording(ctx context.Context, idOrName string) (*models.Recording, error)
	LoadTable(ctx context.Context, recordingID string) (*models.Table, error)
	ImportRecording(ctx context.Context, name, device string, tbl *models.Table) (string, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

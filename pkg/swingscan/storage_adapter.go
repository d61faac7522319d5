package swingscan

import (
	"context"

	"github.com/himanishpuri/SwingScan/pkg/models"
	"github.com/himanishpuri/SwingScan/pkg/swingscan/storage"
)

// storageAdapter adapts storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (creating if needed) a recording database.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) ListRecordings(ctx context.Context) ([]models.Recording, error) {
	recs, err := s.db.ListRecordings(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Recording, len(recs))
	for i := range recs {
		r, err := s.toModel(ctx, &recs[i])
		if err != nil {
			return nil, err
		}
		out[i] = *r
	}
	return out, nil
}

func (s *storageAdapter) GetRecording(ctx context.Context, idOrName string) (*models.Recording, error) {
	rec, err := s.db.GetRecording(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	return s.toModel(ctx, rec)
}

func (s *storageAdapter) LoadTable(ctx context.Context, recordingID string) (*models.Table, error) {
	return s.db.LoadTable(ctx, recordingID)
}

func (s *storageAdapter) ImportRecording(ctx context.Context, name, device string, tbl *models.Table) (string, error) {
	return s.db.ImportRecording(ctx, name, device, tbl)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func (s *storageAdapter) toModel(ctx context.Context, rec *storage.Recording) (*models.Recording, error) {
	var count int64
	if err := s.db.DB.WithContext(ctx).Model(&storage.SampleRow{}).Where("recording_id = ?", rec.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	return &models.Recording{
		ID:        rec.ID,
		Name:      rec.Name,
		Device:    rec.Device,
		Samples:   int(count),
		CreatedAt: rec.CreatedAt,
	}, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/himanishpuri/SwingScan/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "swingscan.sqlite3"
const errDBClientNil = "db client is nil"

// ErrRecordingNotFound is returned when no recording matches an id or name.
var ErrRecordingNotFound = errors.New("recording not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Recording struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"uniqueIndex:idx_recording_name" json:"name"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"created_at"`
}

// SampleRow is one stored sample. Seq orders the rows of a recording.
type SampleRow struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	RecordingID string  `gorm:"type:varchar(36);index:idx_recording_seq,priority:1"`
	Seq         int     `gorm:"index:idx_recording_seq,priority:2"`
	Timestamp   float64
	Ax          float64
	Ay          float64
	Az          float64
	Wx          float64
	Wy          float64
	Wz          float64
}

func (SampleRow) TableName() string { return "samples" }

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SWINGSCAN_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Recording{}, &SampleRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ListRecordings returns all recordings, oldest first.
func (c *DBClient) ListRecordings(ctx context.Context) ([]Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var recs []Recording
	if err := c.DB.WithContext(ctx).Order("created_at, name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return recs, nil
}

// GetRecording looks a recording up by id, then by name.
func (c *DBClient) GetRecording(ctx context.Context, idOrName string) (*Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rec Recording
	err := c.DB.WithContext(ctx).Where("id = ?", idOrName).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = c.DB.WithContext(ctx).Where("name = ?", idOrName).First(&rec).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrRecordingNotFound, idOrName)
	}
	if err != nil {
		return nil, fmt.Errorf("querying recording: %w", err)
	}
	return &rec, nil
}

// LoadTable reads the samples of a recording in seq order.
func (c *DBClient) LoadTable(ctx context.Context, recordingID string) (*models.Table, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var count int64
	if err := c.DB.WithContext(ctx).Model(&Recording{}).Where("id = ?", recordingID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("querying recording: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %q", ErrRecordingNotFound, recordingID)
	}

	var rows []SampleRow
	if err := c.DB.WithContext(ctx).Where("recording_id = ?", recordingID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}

	samples := make([]models.Sample, len(rows))
	for i, r := range rows {
		samples[i] = models.Sample{
			Timestamp: r.Timestamp,
			Ax:        r.Ax,
			Ay:        r.Ay,
			Az:        r.Az,
			Wx:        r.Wx,
			Wy:        r.Wy,
			Wz:        r.Wz,
		}
	}
	return models.NewTable(samples), nil
}

// ImportRecording stores a table as a new recording and returns its id.
// Names are unique.
func (c *DBClient) ImportRecording(ctx context.Context, name, device string, tbl *models.Table) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	rec := Recording{ID: uuid.NewString(), Name: name, Device: device}
	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("creating recording: %w", err)
		}

		rows := make([]SampleRow, 0, 1000)
		for i := 0; i < tbl.Len(); i++ {
			s := tbl.At(i)
			rows = append(rows, SampleRow{
				RecordingID: rec.ID,
				Seq:         i,
				Timestamp:   s.Timestamp,
				Ax:          s.Ax,
				Ay:          s.Ay,
				Az:          s.Az,
				Wx:          s.Wx,
				Wy:          s.Wy,
				Wz:          s.Wz,
			})
			if len(rows) >= 1000 {
				if err := tx.CreateInBatches(rows, 500).Error; err != nil {
					return fmt.Errorf("batch insert samples: %w", err)
				}
				rows = rows[:0]
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 500).Error; err != nil {
				return fmt.Errorf("batch insert last samples: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// DeleteRecording removes a recording and its samples.
func (c *DBClient) DeleteRecording(ctx context.Context, recordingID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", recordingID).Delete(&SampleRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", recordingID).Delete(&Recording{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %q", ErrRecordingNotFound, recordingID)
		}
		return nil
	})
}

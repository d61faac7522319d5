package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/himanishpuri/SwingScan/pkg/models"
)

// ctxCheckEvery is how many rows are decoded between context checks.
const ctxCheckEvery = 1024

// LoadCSV reads a swing recording of "timestamp,ax,ay,az,wx,wy,wz" rows with
// no header. Missing or unreadable files return a *FileError; rows that do
// not decode return a *RowError. No table is returned on error.
func LoadCSV(ctx context.Context, path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	tbl, err := ReadCSV(ctx, f)
	if err != nil {
		var rowErr *RowError
		if errors.As(err, &rowErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return nil, &FileError{Path: path, Err: err}
	}
	return tbl, nil
}

// ReadCSV decodes samples from r. Blank lines are skipped.
func ReadCSV(ctx context.Context, r io.Reader) (*models.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var samples []models.Sample
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RowError{Line: pe.Line, Err: pe.Err}
			}
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		s, err := parseRow(record, line)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	return models.NewTable(samples), nil
}

func parseRow(record []string, line int) (models.Sample, error) {
	if len(record) != models.ChannelCount {
		return models.Sample{}, &RowError{
			Line: line,
			Err:  fmt.Errorf("expected %d fields, got %d", models.ChannelCount, len(record)),
		}
	}

	var row [models.ChannelCount]float64
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return models.Sample{}, &RowError{Line: line, Column: i + 1, Field: field, Err: err}
		}
		row[i] = v
	}
	return models.SampleFromRow(row), nil
}

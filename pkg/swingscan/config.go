package swingscan

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/SwingScan/pkg/swingscan/loader"
)

// Format selects how LoadSwing reads a source.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatCSV    Format = "csv"
	FormatWAV    Format = "wav"
	FormatSQLite Format = "sqlite"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatCSV, FormatWAV, FormatSQLite:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected auto, csv, wav or sqlite)", s)
	}
}

type Config struct {
	DBPath         string
	Format         Format
	AccelFullScale float64
	GyroFullScale  float64
	Logger         Logger
	Storage        Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithFormat(f Format) Option {
	return func(c *Config) {
		c.Format = f
	}
}

// WithAccelFullScale sets the accelerometer range, in g, that a full-scale
// WAV sample maps to.
func WithAccelFullScale(g float64) Option {
	return func(c *Config) {
		c.AccelFullScale = g
	}
}

// WithGyroFullScale sets the gyroscope range, in deg/s, that a full-scale
// WAV sample maps to.
func WithGyroFullScale(dps float64) Option {
	return func(c *Config) {
		c.GyroFullScale = dps
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	wav := loader.DefaultWAVOptions()
	return &Config{
		DBPath:         "swingscan.sqlite3",
		Format:         FormatAuto,
		AccelFullScale: wav.AccelFullScale,
		GyroFullScale:  wav.GyroFullScale,
		Logger:         nil,
	}
}

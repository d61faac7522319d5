package models

import (
	"errors"
	"fmt"
)

// ErrInvalidChannel is returned when a channel name is not one of the seven
// recorded columns.
var ErrInvalidChannel = errors.New("invalid channel")

// Channel identifies one column of a sample row. The numeric value is the
// column position in the source file.
type Channel int

const (
	Timestamp Channel = iota
	Ax
	Ay
	Az
	Wx
	Wy
	Wz
)

// ChannelCount is the number of fields on every sample row.
const ChannelCount = 7

var channelNames = [ChannelCount]string{"timestamp", "ax", "ay", "az", "wx", "wy", "wz"}

var channelByName = map[string]Channel{
	"timestamp": Timestamp,
	"ax":        Ax,
	"ay":        Ay,
	"az":        Az,
	"wx":        Wx,
	"wy":        Wy,
	"wz":        Wz,
}

func (c Channel) String() string {
	if c.Valid() {
		return channelNames[c]
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

func (c Channel) Valid() bool {
	return c >= Timestamp && c <= Wz
}

// ParseChannel resolves a channel name. Names are matched exactly.
func ParseChannel(name string) (Channel, error) {
	c, ok := channelByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q (expected one of %v)", ErrInvalidChannel, name, channelNames)
	}
	return c, nil
}

// ChannelNames returns the recognised names in column order.
func ChannelNames() []string {
	out := make([]string, ChannelCount)
	copy(out, channelNames[:])
	return out
}

// Sample is one row of a swing recording: timestamp, accelerometer (ax, ay,
// az) and gyroscope (wx, wy, wz).
type Sample struct {
	Timestamp float64 `json:"timestamp"`
	Ax        float64 `json:"ax"`
	Ay        float64 `json:"ay"`
	Az        float64 `json:"az"`
	Wx        float64 `json:"wx"`
	Wy        float64 `json:"wy"`
	Wz        float64 `json:"wz"`
}

// SampleFromRow builds a Sample from fields in column order.
func SampleFromRow(row [ChannelCount]float64) Sample {
	return Sample{
		Timestamp: row[Timestamp],
		Ax:        row[Ax],
		Ay:        row[Ay],
		Az:        row[Az],
		Wx:        row[Wx],
		Wy:        row[Wy],
		Wz:        row[Wz],
	}
}

// Value returns the field for c. c must be valid.
func (s *Sample) Value(c Channel) float64 {
	switch c {
	case Timestamp:
		return s.Timestamp
	case Ax:
		return s.Ax
	case Ay:
		return s.Ay
	case Az:
		return s.Az
	case Wx:
		return s.Wx
	case Wy:
		return s.Wy
	case Wz:
		return s.Wz
	}
	panic(fmt.Sprintf("models: invalid channel %d", int(c)))
}

// Row returns the sample fields in column order.
func (s *Sample) Row() [ChannelCount]float64 {
	return [ChannelCount]float64{s.Timestamp, s.Ax, s.Ay, s.Az, s.Wx, s.Wy, s.Wz}
}

package loader

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/himanishpuri/SwingScan/pkg/models"
)

// WAVChannels is the channel count of a motion WAV: ax, ay, az, wx, wy, wz
// interleaved in that order.
const WAVChannels = 6

// WAVOptions maps integer PCM samples to physical units. A sample at the
// positive PCM limit reads as the matching full-scale value.
type WAVOptions struct {
	AccelFullScale float64 // g
	GyroFullScale  float64 // deg/s
}

func DefaultWAVOptions() WAVOptions {
	return WAVOptions{
		AccelFullScale: 16,
		GyroFullScale:  2000,
	}
}

// LoadWAV reads a six-channel PCM WAV recording. Timestamps are synthesised
// as sample index / sample rate, in seconds.
func LoadWAV(ctx context.Context, path string, opts WAVOptions) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	tbl, err := ReadWAV(ctx, f, opts)
	if fe, ok := err.(*FormatError); ok {
		fe.Path = path
	}
	return tbl, err
}

// ReadWAV decodes a six-channel PCM WAV stream.
func ReadWAV(ctx context.Context, r io.ReadSeeker, opts WAVOptions) (*models.Table, error) {
	if opts.AccelFullScale <= 0 || opts.GyroFullScale <= 0 {
		opts = DefaultWAVOptions()
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, &FormatError{Reason: "not a PCM WAV file", Err: dec.Err()}
	}
	if dec.NumChans != WAVChannels {
		return nil, &FormatError{Reason: fmt.Sprintf("expected %d channels, got %d", WAVChannels, dec.NumChans)}
	}
	if dec.SampleRate == 0 {
		return nil, &FormatError{Reason: "sample rate is 0"}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &FormatError{Reason: "decoding PCM data", Err: err}
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	// 8-bit WAV is unsigned; only signed depths are accepted
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported bit depth %d", bitDepth)}
	}
	pcmMax := float64(int64(1) << (bitDepth - 1))
	accel := opts.AccelFullScale / pcmMax
	gyro := opts.GyroFullScale / pcmMax
	rate := float64(dec.SampleRate)

	frames := len(buf.Data) / WAVChannels
	samples := make([]models.Sample, frames)
	for i := 0; i < frames; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		frame := buf.Data[i*WAVChannels : (i+1)*WAVChannels]
		samples[i] = models.Sample{
			Timestamp: float64(i) / rate,
			Ax:        float64(frame[0]) * accel,
			Ay:        float64(frame[1]) * accel,
			Az:        float64(frame[2]) * accel,
			Wx:        float64(frame[3]) * gyro,
			Wy:        float64(frame[4]) * gyro,
			Wz:        float64(frame[5]) * gyro,
		}
	}

	return models.NewTable(samples), nil
}

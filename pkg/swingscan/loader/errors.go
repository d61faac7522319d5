package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrFileUnavailable matches errors for a recording that could not be
	// opened or read.
	ErrFileUnavailable = errors.New("recording file unavailable")

	// ErrMalformedRow matches errors for content that could not be decoded
	// into samples.
	ErrMalformedRow = errors.New("malformed sample row")
)

// FileError reports a missing or unreadable recording.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("recording %s unavailable: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func (e *FileError) Is(target error) bool { return target == ErrFileUnavailable }

// RowError reports a CSV line that does not decode to a sample. Line is
// 1-based; Column is the 1-based field position, or 0 when the whole row is
// at fault.
type RowError struct {
	Line   int
	Column int
	Field  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, field %d (%q): %v", e.Line, e.Column, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func (e *RowError) Is(target error) bool { return target == ErrMalformedRow }

// FormatError reports a binary recording whose layout is not supported.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("recording %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrMalformedRow }

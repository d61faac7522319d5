package search

import (
	"errors"

	"github.com/himanishpuri/SwingScan/pkg/models"
)

var (
	// ErrInvalidChannel is returned for a channel name outside the fixed set.
	ErrInvalidChannel = models.ErrInvalidChannel

	// ErrInvalidWindow is returned when winLength is not positive.
	ErrInvalidWindow = errors.New("window length must be positive")

	// ErrInvalidRange is returned when bounds fall outside the table or point
	// the wrong way for the operation.
	ErrInvalidRange = errors.New("invalid search range")
)

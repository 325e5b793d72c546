package loader

import "errors"

var (
	// ErrDataNotFound is returned when a season has no score file on disk.
	ErrDataNotFound = errors.New("score data not found")
	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("empty score input")
)

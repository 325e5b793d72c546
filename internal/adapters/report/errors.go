package report

import "errors"

var (
	// ErrInvalidDocument is returned when a results document cannot describe a season.
	ErrInvalidDocument = errors.New("invalid results document")
)

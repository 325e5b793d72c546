package korm

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingRosterWeek = errors.New("no roster week score data")
	ErrWeekNotFound      = errors.New("week not processed")
	ErrInvalidStatus     = errors.New("invalid team status")
	ErrInvalidWindow     = errors.New("invalid week window")
)

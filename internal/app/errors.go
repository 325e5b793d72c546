package service

import "errors"

var (
	// ErrNoLoader is returned when a season is processed without a score loader.
	ErrNoLoader = errors.New("no score loader configured")
	// ErrNoOutputDir is returned when reports are enabled but no directory can be resolved.
	ErrNoOutputDir = errors.New("no report output directory")
)

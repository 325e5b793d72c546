package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound   = errors.New("season not found")
	ErrNilResult  = errors.New("nil season result")
	ErrNoDatabase = errors.New("sqlite store is not open")
)

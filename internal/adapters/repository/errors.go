package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrStorage  = errors.New("storage operation failed")
)

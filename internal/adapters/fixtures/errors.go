package fixtures

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrFetchFeed = errors.New("fixtures feed fetch failed")
	ErrParseFeed = errors.New("fixtures feed parse failed")
)

package provider

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers
// so the refresh loop can categorize failures without string matching.
var (
	// ErrNetwork covers connection failures and timeouts before a response arrives.
	ErrNetwork = errors.New("standings fetch network error")
	// ErrClientStatus covers upstream 4xx responses (bad key, bad request).
	ErrClientStatus = errors.New("standings fetch rejected")
	// ErrServerStatus covers upstream 5xx responses.
	ErrServerStatus = errors.New("standings fetch upstream failure")
	// ErrDecode covers malformed or unexpected response bodies.
	ErrDecode = errors.New("standings response decode failed")
	// ErrEmptyTable reports a well-formed response that carries no teams.
	ErrEmptyTable = errors.New("standings response contains no teams")
)

package client

import "errors"

// Error kinds. Fetch failures are categorized so callers can distinguish
// transient transport problems from service-side and decode failures.
var (
	// ErrNetwork covers connection failures and timeouts.
	ErrNetwork = errors.New("network error")
	// ErrClientStatus covers 4xx responses.
	ErrClientStatus = errors.New("client error status")
	// ErrServerStatus covers 5xx responses, including 503 before the
	// service has computed its first table.
	ErrServerStatus = errors.New("server error status")
	// ErrDecode covers malformed response bodies.
	ErrDecode = errors.New("decode error")
	// ErrNoData is returned when a read finds no cached table and the
	// refresh that would have produced one failed.
	ErrNoData = errors.New("no table data")
)

// Package codecerr holds the two error kinds shared by every codec stage.
// Package-specific sentinels wrap one of these so callers can match either
// the precise condition or just its kind with errors.Is.
package codecerr

import "errors"

var (
	// ErrInvalidInput indicates a wrong block length, a non-binary value,
	// or a bit count that cannot be packed into whole bytes
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedStream indicates the input was not produced by the stream
	// encoder or was truncated
	ErrMalformedStream = errors.New("malformed stream")
)

package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrModelUnavailable is returned when the backend responds with a
	// non-success status, the connection fails, or the call times out.
	ErrModelUnavailable = errors.New("model backend unavailable")

	// ErrEmptyMessage is returned when the new message has no content.
	ErrEmptyMessage = errors.New("message content cannot be empty")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

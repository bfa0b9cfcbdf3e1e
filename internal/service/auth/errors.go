// Package auth provides JWT access-token issuing/validation and password
// hashing for the API's authentication layer.
package auth

import "errors"

// Sentinel errors for token validation. The middleware maps each of these
// to its own 401 message; anything else is treated as an internal failure.
var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the token's exp claim has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned when the nbf claim is in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)

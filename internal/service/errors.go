// Package service provides application-level services for users,
// conversations, messages, tasks, feedback, attachments, and admin queries.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Service methods return sentinels for expected conditions and wrap unexpected
// errors; callers use errors.Is to discriminate, and the API layer maps each
// to its HTTP status code.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a login attempt with an unknown user or
	// wrong password. Deliberately indistinguishable between the two cases.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrFileTooLarge indicates an upload exceeding the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrFileTypeNotAllowed indicates an upload with a disallowed extension.
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

package rag

import "errors"

var (
	// ErrInvalidRequest means the request could not be served at all:
	// no message, or neither a session nor inline history to anchor it.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound means the referenced session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrUnauthorized means the session belongs to a different user.
	ErrUnauthorized = errors.New("session does not belong to this user")
)

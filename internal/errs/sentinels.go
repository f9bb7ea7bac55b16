// Package errs contains sentinel and typed errors shared by the client layers.
package errs

import "errors"

// Common sentinels across session/client/service layers.
var (
	// ErrNotFound indicates the backend answered 404 for a by-id lookup,
	// or the requested record is not among the user's records.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates an authorized call was attempted without a session token.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrSessionExpired indicates the backend rejected the bearer token (401/403).
	// Callers should invalidate the session and ask the user to log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrUsernameTaken indicates registration failed on a duplicate username.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrEmailTaken indicates registration failed on a duplicate email.
	ErrEmailTaken = errors.New("email is already registered")
)

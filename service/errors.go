package service

import "errors"

// The error taxonomy surfaced to callers. Storage failures are wrapped
// errors carrying the underlying cause and are distinct from all of these.
var (
	// ErrNotFound indicates the requested post/profile/user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUserExists indicates a signup attempt with an email that already
	// belongs to a seeded account.
	ErrUserExists = errors.New("user already exists")

	// ErrUnauthenticated indicates a mutation that needs a current user while
	// nobody is logged in.
	ErrUnauthenticated = errors.New("no authenticated user")
)

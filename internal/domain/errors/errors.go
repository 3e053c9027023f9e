package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNoCopiesAvailable  = errors.New("no copies available")
	ErrAlreadyReturned    = errors.New("already returned")
	ErrConflict           = errors.New("conflict")

	// ErrConcurrentUpdate marks a transaction aborted by a concurrent writer; the operation may be retried.
	ErrConcurrentUpdate = errors.New("concurrent update")
)

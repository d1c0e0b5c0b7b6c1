package store

import "errors"

var (
	// ErrNotFound covers both truly absent records and records owned by
	// another tenant. The two cases are deliberately indistinguishable so
	// that existence never leaks across tenants.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded marks a note creation rejected by the free-plan
	// limit. Distinguished from validation errors so clients can render
	// an upgrade prompt.
	ErrQuotaExceeded = errors.New("note quota exceeded")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

package domain

import "errors"

var (
	// ErrNotFound indicates a geocoding or routing provider could not resolve
	// the requested location or route. Callers must not guess coordinates;
	// the location string is reported back to the user instead.
	ErrNotFound = errors.New("not found")

	// ErrNoCredential indicates a provider credential is missing from the
	// configuration. Surfaced immediately, never retried.
	ErrNoCredential = errors.New("provider credential not configured")
)

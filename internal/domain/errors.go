package domain

import "errors"

var (
	// ErrMissingCredential is returned when no provider API key is configured
	ErrMissingCredential = errors.New("provider credential not supplied")

	// ErrInvalidCredential is returned when the provider rejects the API key
	ErrInvalidCredential = errors.New("provider credential rejected")

	// ErrTransportFailure is returned when the provider call fails or returns a non-success status
	ErrTransportFailure = errors.New("shopping provider request failed")

	// ErrParseFailure is returned when the provider payload cannot be decoded
	ErrParseFailure = errors.New("shopping provider response malformed")

	// ErrInvalidSelection is returned when an operator picks a candidate index outside the offer set
	ErrInvalidSelection = errors.New("invalid offer selection")

	// ErrCatalogFormat is returned when required catalog columns cannot be located
	ErrCatalogFormat = errors.New("catalog format not recognised")

	// ErrInvalidCatalogRow is returned when a catalog row fails validation
	ErrInvalidCatalogRow = errors.New("invalid catalog row")

	// ErrSessionNotFound is returned when a research session id is unknown
	ErrSessionNotFound = errors.New("research session not found")

	// ErrRowNotFound is returned when an identifier is not part of a session
	ErrRowNotFound = errors.New("catalog row not found in session")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)

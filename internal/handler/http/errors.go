package http

import "errors"

// Sentinel errors reported by the REST router during route registration.
// Registration happens once at startup, so these surface as fatal wiring
// mistakes rather than request-time failures.
var (
	// ErrDuplicateEndpoint is returned when a method and pattern pair is
	// registered twice.
	ErrDuplicateEndpoint = errors.New("endpoint already registered")

	// ErrNoOperations is returned when a resource registration finds no
	// operation methods on the given service.
	ErrNoOperations = errors.New("resource exposes no operations")
)

// errUnroutableArgument marks a matched route whose path argument names no
// addressable resource, e.g. an id with more digits than int64 holds. It
// renders as the same 404 a route miss gets.
var errUnroutableArgument = errors.New("unroutable path argument")

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrMissingTokenSignKey indicates that no JWT signing key was provided
	// by any configuration source.
	ErrMissingTokenSignKey = errors.New("auth token sign key is required")

	// ErrUnknownDBDriver indicates that the configured database driver is
	// neither "pgx" nor "sqlite3".
	ErrUnknownDBDriver = errors.New("unknown database driver")

	// ErrMissingDBDSN indicates that no database connection string was
	// provided by any configuration source.
	ErrMissingDBDSN = errors.New("database DSN is required")
)

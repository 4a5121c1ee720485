package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the tzkeeper
// server. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Auth holds token signing parameters.
	Auth Auth `envPrefix:"AUTH_"`

	// Storage holds the relational database connection settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and request handling settings for the
	// HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Auth holds configuration values that control credential issue and
// verification.
type Auth struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Must be kept confidential. Required.
	// Env: AUTH_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT token.
	// Tokens whose issuer does not match are rejected during parsing.
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a JWT token remains valid after
	// issuance (e.g. "24h", "30m").
	// Env: AUTH_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Storage groups the configuration of the persistence backend.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds the relational database connection settings.
type DB struct {
	// Driver selects the database backend: "pgx" or "sqlite3".
	// Env: STORAGE_DB_DRIVER
	Driver string `env:"DRIVER"`

	// DSN is the driver-specific connection string: a PostgreSQL URI for
	// "pgx", a file path for "sqlite3".
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Server holds network address and request handling settings for the HTTP
// server.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8000").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ClientDir is an optional directory of web client static files to
	// serve under /client. Empty disables static serving.
	// Env: SERVER_CLIENT_DIR
	ClientDir string `env:"CLIENT_DIR"`

	// EnableTestReset enables the POST /restart endpoint that truncates all
	// tables. Intended strictly for acceptance-test harnesses; never enable
	// in production.
	// Env: SERVER_ENABLE_TEST_RESET
	EnableTestReset bool `env:"ENABLE_TEST_RESET"`
}

// Defaults applied by the builder when no source provides a value.
const (
	DefaultHTTPAddress   = "0.0.0.0:8000"
	DefaultTokenIssuer   = "tzkeeper"
	DefaultTokenDuration = 24 * time.Hour
	DefaultDBDriver      = DriverSQLite
	DefaultDBDSN         = "db/db.sqlite"
)

// Supported values of [DB.Driver].
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Missing values fall back to the package defaults. Returns a fully
// populated *StructuredConfig or an error if any source fails to load or
// the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}

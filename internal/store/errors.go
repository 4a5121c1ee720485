package store

import "errors"

// Sentinel errors returned by the persistence layer. Callers match against
// them with [errors.Is].
var (
	// ErrLoginAlreadyExists is returned when a user insert or update hits
	// the unique constraint on the login column.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a user lookup matches no row.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrTimezoneNotFound is returned when a timezone lookup, update, or
	// delete matches no row owned by the requesting user. Ownership
	// violations and plain non-existence are indistinguishable through it.
	ErrTimezoneNotFound = errors.New("timezone not found")

	// ErrBuildingSQLQuery is returned when the squirrel builder fails to
	// render a statement.
	ErrBuildingSQLQuery = errors.New("failed to build SQL query")

	// ErrExecutingQuery is returned when a statement fails at the driver
	// level for a reason other than a recognized constraint violation.
	ErrExecutingQuery = errors.New("failed to execute query")

	// ErrScanningRow is returned when a result row cannot be scanned into
	// the target model.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when the result set reports an iteration
	// error after scanning.
	ErrScanningRows = errors.New("failed to iterate rows")

	// ErrAcquiringConnection is returned when a dedicated connection for a
	// request session cannot be checked out of the pool.
	ErrAcquiringConnection = errors.New("failed to acquire database connection")

	// ErrBeginningTransaction is returned when a transaction cannot be
	// started on the request session.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommittingTransaction is returned when committing an open
	// transaction fails.
	ErrCommittingTransaction = errors.New("failed to commit transaction")
)

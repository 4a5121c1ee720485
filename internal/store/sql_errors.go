package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ConstraintClassifier inspects driver-level errors and reports whether they
// represent a unique-constraint violation. Each supported database backend
// provides its own implementation, so the repositories stay driver-agnostic.
type ConstraintClassifier interface {
	// IsUniqueViolation reports whether err was caused by a violated
	// unique constraint.
	IsUniqueViolation(err error) bool
}

// PostgresConstraintClassifier implements [ConstraintClassifier] for
// PostgreSQL by inspecting the pgconn error code returned by the pgx driver.
type PostgresConstraintClassifier struct{}

// NewPostgresConstraintClassifier constructs a [PostgresConstraintClassifier]
// ready for use.
func NewPostgresConstraintClassifier() *PostgresConstraintClassifier {
	return &PostgresConstraintClassifier{}
}

// IsUniqueViolation implements [ConstraintClassifier]. It attempts to unwrap
// err as a *pgconn.PgError and matches the unique_violation code (23505).
func (c *PostgresConstraintClassifier) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	return false
}

// SQLiteConstraintClassifier implements [ConstraintClassifier] for SQLite by
// inspecting the extended result code of the mattn/go-sqlite3 driver error.
type SQLiteConstraintClassifier struct{}

// NewSQLiteConstraintClassifier constructs a [SQLiteConstraintClassifier]
// ready for use.
func NewSQLiteConstraintClassifier() *SQLiteConstraintClassifier {
	return &SQLiteConstraintClassifier{}
}

// IsUniqueViolation implements [ConstraintClassifier]. It matches the
// SQLITE_CONSTRAINT_UNIQUE and SQLITE_CONSTRAINT_PRIMARYKEY extended codes.
func (c *SQLiteConstraintClassifier) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

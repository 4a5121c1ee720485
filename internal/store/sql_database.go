package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/migrations"
)

// DB wraps *sql.DB with the driver-specific pieces the repositories need:
// the squirrel placeholder format and a constraint classifier for mapping
// driver errors to sentinel errors.
type DB struct {
	*sql.DB
	driver      string
	placeholder sq.PlaceholderFormat
	constraints ConstraintClassifier
	logger      *logger.Logger
}

// Migrate applies all pending schema migrations for this database.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

// builder returns a statement builder pre-configured with this database's
// placeholder format ($N for PostgreSQL, ? for SQLite).
func (db *DB) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.placeholder)
}

// Reset truncates all application tables. It exists solely for acceptance
// test harnesses driving the /restart endpoint and must never run in
// production.
func (db *DB) Reset(ctx context.Context) error {
	for _, table := range []string{"timezones", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error resetting table %s: %w", table, err)
		}
	}

	return nil
}

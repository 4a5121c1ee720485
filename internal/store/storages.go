// Package store implements the persistence layer: database bootstrap for
// the supported backends, the per-request session scope with its
// transactional discipline, and the SQL repositories for users and
// timezones.
package store

import (
	"context"
	"fmt"

	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
)

// Storages aggregates the persistence components handed to the service
// layer. The struct is built once at startup and is safe for concurrent use;
// all per-request state lives in sessions resolved through the request
// scope.
type Storages struct {
	// DB is the underlying database wrapper.
	DB *DB

	// Sessions hands out per-request sessions and transactional scopes.
	Sessions *Sessions

	// Users is the user account repository.
	Users UserRepository

	// Timezones is the timezone record repository.
	Timezones TimezoneRepository
}

// NewStorages connects to the configured database backend, applies pending
// migrations, and wires the session scope and repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var db *DB
	var err error

	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		return nil, err
	}

	sessions := NewSessions(db, log)

	return &Storages{
		DB:        db,
		Sessions:  sessions,
		Users:     NewUserRepository(db, sessions, log),
		Timezones: NewTimezoneRepository(db, sessions, log),
	}, nil
}

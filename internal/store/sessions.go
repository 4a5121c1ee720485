package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/scope"
)

// sessionScopeKey is the scope key under which the per-request session is
// memoized. Resolving it twice within one request yields the identical
// *Session; concurrent requests never share one.
const sessionScopeKey scope.Key = "db.session"

// Session is the unit of work bound to one request. It owns a dedicated
// database connection and, once a mutating operation starts, a lazily begun
// transaction. Statements route through the open transaction when present
// and through the plain connection otherwise, so reads issued outside
// [Sessions.WithTransaction] need no commit.
//
// A Session is never reused across requests: the request scope closes it at
// request end, rolling back any transaction left open.
type Session struct {
	conn   *sql.Conn
	tx     *sql.Tx
	logger *logger.Logger
}

// QueryContext executes a query through the open transaction if one exists,
// otherwise through the session connection.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.tx != nil {
		return s.tx.QueryContext(ctx, query, args...)
	}
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a single-row query through the open transaction
// if one exists, otherwise through the session connection.
func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	if s.tx != nil {
		return s.tx.QueryRowContext(ctx, query, args...)
	}
	return s.conn.QueryRowContext(ctx, query, args...)
}

// ExecContext executes a statement through the open transaction if one
// exists, otherwise through the session connection.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.tx != nil {
		return s.tx.ExecContext(ctx, query, args...)
	}
	return s.conn.ExecContext(ctx, query, args...)
}

// Close implements io.Closer so the request scope releases the session at
// request end. An open transaction at this point means a handler escaped
// without completing its transactional block; it is rolled back before the
// connection returns to the pool.
func (s *Session) Close() error {
	var errs []error

	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("error rolling back abandoned transaction: %w", err))
		}
		s.tx = nil
	}

	if err := s.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error releasing session connection: %w", err))
	}

	return errors.Join(errs...)
}

// Sessions hands out the per-request [Session] and provides the
// transactional scope around mutating operations. The struct itself is
// process-wide and safe for concurrent use; all mutable state lives in the
// request-scoped sessions it produces.
type Sessions struct {
	db     *DB
	logger *logger.Logger
}

// NewSessions constructs the session scope over the given database.
func NewSessions(db *DB, logger *logger.Logger) *Sessions {
	logger.Debug().Msg("creating session scope")
	return &Sessions{
		db:     db,
		logger: logger,
	}
}

// Acquire resolves the request's session, checking a dedicated connection
// out of the pool on first access. Subsequent calls within the same request
// return the identical session. Calling Acquire outside an active request
// scope fails with [scope.ErrNoActiveScope].
func (s *Sessions) Acquire(ctx context.Context) (*Session, error) {
	return scope.ResolveAs(ctx, sessionScopeKey, func() (*Session, error) {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "*Sessions.Acquire").
				Msg("failed to acquire session connection")
			return nil, fmt.Errorf("%w: %w", ErrAcquiringConnection, err)
		}

		return &Session{conn: conn, logger: s.logger}, nil
	})
}

// WithTransaction runs fn inside the request's transactional scope:
// a transaction is begun on the session if none is open, committed when fn
// returns nil, and rolled back when fn returns an error.
//
// Nested calls within one request reuse the same session and the same
// underlying transaction; a rollback therefore discards every uncommitted
// change made through the session so far, matching
// single-session-per-request semantics rather than true nested
// transactions. After an inner block commits, an enclosing block's commit
// is a no-op.
func (s *Sessions) WithTransaction(ctx context.Context, fn func() error) error {
	sess, err := s.Acquire(ctx)
	if err != nil {
		return err
	}

	if sess.tx == nil {
		tx, err := sess.conn.BeginTx(ctx, nil)
		if err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "*Sessions.WithTransaction").
				Msg("failed to begin transaction")
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}
		sess.tx = tx
	}

	if err := fn(); err != nil {
		if sess.tx != nil {
			if rbErr := sess.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.FromContext(ctx).Err(rbErr).
					Str("func", "*Sessions.WithTransaction").
					Msg("failed to roll back transaction")
			}
			sess.tx = nil
		}
		return err
	}

	if sess.tx != nil {
		if err := sess.tx.Commit(); err != nil {
			sess.tx = nil
			logger.FromContext(ctx).Err(err).
				Str("func", "*Sessions.WithTransaction").
				Msg("failed to commit transaction")
			return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
		}
		sess.tx = nil
	}

	return nil
}

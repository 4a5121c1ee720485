package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/models"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It handles account creation and lookup against the "users" table through
// the per-request session.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	db       *DB
	sessions *Sessions
	logger   *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database, session scope, and logger.
func NewUserRepository(db *DB, sessions *Sessions, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:       db,
		sessions: sessions,
		logger:   logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with the server-assigned UserID.
//
// Error handling:
//   - unique-constraint violation on login → [ErrLoginAlreadyExists].
//   - builder failure → [ErrBuildingSQLQuery].
//   - any other driver-level error → [ErrScanningRow] wrapped.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return models.User{}, err
	}

	query, args, err := r.db.builder().
		Insert(user.TableName()).
		Columns("login", "name", "password_hash").
		Values(user.Login, user.Name, user.PasswordHash).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("failed to build insert query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := sess.QueryRowContext(ctx, query, args...).Scan(&user.UserID); err != nil {
		if r.db.constraints.IsUniqueViolation(err) {
			log.Debug().Str("login", user.Login).Msg("login already taken")
			return models.User{}, ErrLoginAlreadyExists
		}

		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error inserting user")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// FindUserByID retrieves a user record by primary key.
// Returns [ErrNoUserWasFound] when no row matches.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, "id", userID)
}

// FindUserByLogin retrieves a user record by its unique login.
// Returns [ErrNoUserWasFound] when no row matches.
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	return r.findUser(ctx, "login", login)
}

func (r *userRepository) findUser(ctx context.Context, column string, value any) (models.User, error) {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return models.User{}, err
	}

	query, args, err := r.db.builder().
		Select("id", "login", "name", "password_hash").
		From(models.User{}.TableName()).
		Where(sq.Eq{column: value}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.findUser").Msg("failed to build select query")
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var found models.User
	var name sql.NullString
	row := sess.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&found.UserID, &found.Login, &name, &found.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}

		log.Err(err).Str("func", "*userRepository.findUser").Msg("error scanning user row")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	found.Name = name.String

	return found, nil
}

// UpdateUser rewrites the mutable columns of the user identified by
// user.UserID.
//
// Error handling:
//   - unique-constraint violation on login → [ErrLoginAlreadyExists].
//   - zero rows affected → [ErrNoUserWasFound].
func (r *userRepository) UpdateUser(ctx context.Context, user models.User) error {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}

	query, args, err := r.db.builder().
		Update(user.TableName()).
		Set("login", user.Login).
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Where(sq.Eq{"id": user.UserID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("failed to build update query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := sess.ExecContext(ctx, query, args...)
	if err != nil {
		if r.db.constraints.IsUniqueViolation(err) {
			return ErrLoginAlreadyExists
		}

		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error updating user")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// DeleteUser removes the user row identified by userID.
// Returns [ErrNoUserWasFound] when no row was deleted.
func (r *userRepository) DeleteUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}

	query, args, err := r.db.builder().
		Delete(models.User{}.TableName()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteUser").Msg("failed to build delete query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := sess.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.DeleteUser").Msg("error deleting user")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

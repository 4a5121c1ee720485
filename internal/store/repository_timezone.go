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

// timezoneRepository is the SQL-backed implementation of
// [TimezoneRepository]. Every statement filters by the owning user id, so a
// record of another user is indistinguishable from a missing one at this
// layer already.
type timezoneRepository struct {
	db       *DB
	sessions *Sessions
	logger   *logger.Logger
}

// NewTimezoneRepository constructs a [TimezoneRepository] backed by the
// provided database, session scope, and logger.
func NewTimezoneRepository(db *DB, sessions *Sessions, logger *logger.Logger) TimezoneRepository {
	logger.Debug().Msg("creating timezone repository")
	return &timezoneRepository{
		db:       db,
		sessions: sessions,
		logger:   logger,
	}
}

// CreateTimezone persists a new record and returns it with the
// server-assigned ID.
func (r *timezoneRepository) CreateTimezone(ctx context.Context, timezone models.Timezone) (models.Timezone, error) {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return models.Timezone{}, err
	}

	query, args, err := r.db.builder().
		Insert(timezone.TableName()).
		Columns("user_id", "city", "gmt_delta_seconds").
		Values(timezone.UserID, timezone.City, timezone.GMTDeltaSeconds).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*timezoneRepository.CreateTimezone").Msg("failed to build insert query")
		return models.Timezone{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err := sess.QueryRowContext(ctx, query, args...).Scan(&timezone.ID); err != nil {
		log.Err(err).
			Str("func", "*timezoneRepository.CreateTimezone").
			Int64("user_id", timezone.UserID).
			Msg("error inserting timezone")
		return models.Timezone{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return timezone, nil
}

// GetTimezone retrieves one record by id within the given user's records.
// Returns [ErrTimezoneNotFound] when no owned row matches.
func (r *timezoneRepository) GetTimezone(ctx context.Context, userID, timezoneID int64) (models.Timezone, error) {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return models.Timezone{}, err
	}

	query, args, err := r.db.builder().
		Select("id", "user_id", "city", "gmt_delta_seconds").
		From(models.Timezone{}.TableName()).
		Where(sq.Eq{"id": timezoneID, "user_id": userID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*timezoneRepository.GetTimezone").Msg("failed to build select query")
		return models.Timezone{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var found models.Timezone
	row := sess.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&found.ID, &found.UserID, &found.City, &found.GMTDeltaSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Timezone{}, ErrTimezoneNotFound
		}

		log.Err(err).
			Str("func", "*timezoneRepository.GetTimezone").
			Int64("user_id", userID).
			Msg("error scanning timezone row")
		return models.Timezone{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return found, nil
}

// ListTimezones retrieves the user's records ordered by id, optionally
// narrowed to cities containing the filter substring.
func (r *timezoneRepository) ListTimezones(ctx context.Context, userID int64, filter TimezoneFilter) ([]models.Timezone, error) {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	builder := r.db.builder().
		Select("id", "user_id", "city", "gmt_delta_seconds").
		From(models.Timezone{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id")

	if filter.CityContains != "" {
		builder = builder.Where(sq.Like{"city": "%" + filter.CityContains + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*timezoneRepository.ListTimezones").Msg("failed to build select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := sess.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*timezoneRepository.ListTimezones").
			Int64("user_id", userID).
			Msg("failed to execute list query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.Timezone, 0, 16)

	for rows.Next() {
		var item models.Timezone
		if err := rows.Scan(&item.ID, &item.UserID, &item.City, &item.GMTDeltaSeconds); err != nil {
			log.Err(err).
				Str("func", "*timezoneRepository.ListTimezones").
				Int64("user_id", userID).
				Msg("failed to scan timezone row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		results = append(results, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "*timezoneRepository.ListTimezones").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

// UpdateTimezone rewrites the mutable columns of the record identified by
// timezone.ID within the owner's records.
// Returns [ErrTimezoneNotFound] when no owned row was updated.
func (r *timezoneRepository) UpdateTimezone(ctx context.Context, timezone models.Timezone) error {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}

	query, args, err := r.db.builder().
		Update(timezone.TableName()).
		Set("city", timezone.City).
		Set("gmt_delta_seconds", timezone.GMTDeltaSeconds).
		Where(sq.Eq{"id": timezone.ID, "user_id": timezone.UserID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*timezoneRepository.UpdateTimezone").Msg("failed to build update query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := sess.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*timezoneRepository.UpdateTimezone").
			Int64("user_id", timezone.UserID).
			Msg("error updating timezone")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrTimezoneNotFound
	}

	return nil
}

// DeleteTimezone removes the record with the given id within the owner's
// records. Returns [ErrTimezoneNotFound] when no owned row was deleted.
func (r *timezoneRepository) DeleteTimezone(ctx context.Context, userID, timezoneID int64) error {
	log := logger.FromContext(ctx)

	sess, err := r.sessions.Acquire(ctx)
	if err != nil {
		return err
	}

	query, args, err := r.db.builder().
		Delete(models.Timezone{}.TableName()).
		Where(sq.Eq{"id": timezoneID, "user_id": userID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*timezoneRepository.DeleteTimezone").Msg("failed to build delete query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := sess.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*timezoneRepository.DeleteTimezone").
			Int64("user_id", userID).
			Msg("error deleting timezone")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrTimezoneNotFound
	}

	return nil
}

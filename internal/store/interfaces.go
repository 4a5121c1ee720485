package store

import (
	"context"

	"github.com/mkarev/tzkeeper/models"
)

// UserRepository provides persistence operations over user accounts.
// All methods operate on the per-request session resolved through the
// request scope.
type UserRepository interface {
	// CreateUser inserts a new user and returns it with the
	// server-assigned UserID. A violated login uniqueness constraint is
	// reported as [ErrLoginAlreadyExists].
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByID returns the user with the given id or [ErrNoUserWasFound].
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// FindUserByLogin returns the user with the given login or
	// [ErrNoUserWasFound].
	FindUserByLogin(ctx context.Context, login string) (models.User, error)

	// UpdateUser rewrites the login, name, and password hash of the user
	// identified by user.UserID. Returns [ErrNoUserWasFound] when the row
	// does not exist and [ErrLoginAlreadyExists] on a login conflict.
	UpdateUser(ctx context.Context, user models.User) error

	// DeleteUser removes the user row or returns [ErrNoUserWasFound].
	DeleteUser(ctx context.Context, userID int64) error
}

// TimezoneFilter narrows a timezone listing.
type TimezoneFilter struct {
	// CityContains, when non-empty, keeps only records whose city contains
	// the substring.
	CityContains string
}

// TimezoneRepository provides persistence operations over timezone records.
// Every method is ownership-filtered by user id: records of other users are
// indistinguishable from missing ones.
type TimezoneRepository interface {
	// CreateTimezone inserts a new record and returns it with the
	// server-assigned ID.
	CreateTimezone(ctx context.Context, timezone models.Timezone) (models.Timezone, error)

	// GetTimezone returns the record with the given id owned by userID or
	// [ErrTimezoneNotFound].
	GetTimezone(ctx context.Context, userID, timezoneID int64) (models.Timezone, error)

	// ListTimezones returns all records owned by userID matching filter,
	// ordered by id.
	ListTimezones(ctx context.Context, userID int64, filter TimezoneFilter) ([]models.Timezone, error)

	// UpdateTimezone rewrites the city and GMT delta of the record
	// identified by timezone.ID and timezone.UserID, or returns
	// [ErrTimezoneNotFound].
	UpdateTimezone(ctx context.Context, timezone models.Timezone) error

	// DeleteTimezone removes the record with the given id owned by userID
	// or returns [ErrTimezoneNotFound].
	DeleteTimezone(ctx context.Context, userID, timezoneID int64) error
}

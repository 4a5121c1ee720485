package service

import (
	"context"
	"errors"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/models"
)

// TimezoneService implements the timezone record operations. Every
// operation requires a principal and is ownership-filtered: a record owned
// by someone else answers exactly like a record that does not exist.
type TimezoneService struct {
	timezones  store.TimezoneRepository
	sessions   TransactionScope
	users      store.UserRepository
	principals *Principals
	validator  *Validator
	logger     *logger.Logger
}

// NewTimezoneService constructs the timezone record service.
func NewTimezoneService(timezones store.TimezoneRepository, users store.UserRepository, sessions TransactionScope, principals *Principals, validator *Validator, logger *logger.Logger) *TimezoneService {
	return &TimezoneService{
		timezones:  timezones,
		sessions:   sessions,
		users:      users,
		principals: principals,
		validator:  validator,
		logger:     logger,
	}
}

// List returns the principal's timezone records ordered by id. The optional
// q query parameter keeps only records whose city contains the substring.
func (s *TimezoneService) List(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	filter := store.TimezoneFilter{CityContains: req.Query.Get("q")}

	timezones, err := s.timezones.ListTimezones(ctx, user.UserID, filter)
	if err != nil {
		return nil, err
	}

	return timezones, nil
}

// Get returns one of the principal's records by id.
func (s *TimezoneService) Get(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	timezone, err := s.timezones.GetTimezone(ctx, user.UserID, req.Args.ID)
	if err != nil {
		if errors.Is(err, store.ErrTimezoneNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return timezone, nil
}

// Create stores a new record owned by the principal.
func (s *TimezoneService) Create(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	payload := &TimezonePayload{}
	if err := s.validator.DecodeAndValidate(req.Body, payload); err != nil {
		return nil, err
	}

	timezone := models.Timezone{
		UserID:          user.UserID,
		City:            *payload.City,
		GMTDeltaSeconds: *payload.GMTDeltaSeconds,
	}

	err = s.sessions.WithTransaction(ctx, func() error {
		timezone, err = s.timezones.CreateTimezone(ctx, timezone)
		return err
	})
	if err != nil {
		return nil, err
	}

	return timezone, nil
}

// Update rewrites one of the principal's records. The record's existence is
// checked before the body is validated, so an unknown id answers 404 even
// when the body is also invalid.
func (s *TimezoneService) Update(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	timezone, err := s.timezones.GetTimezone(ctx, user.UserID, req.Args.ID)
	if err != nil {
		if errors.Is(err, store.ErrTimezoneNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	payload := &TimezonePayload{}
	if err := s.validator.DecodeAndValidate(req.Body, payload); err != nil {
		return nil, err
	}

	timezone.City = *payload.City
	timezone.GMTDeltaSeconds = *payload.GMTDeltaSeconds

	err = s.sessions.WithTransaction(ctx, func() error {
		return s.timezones.UpdateTimezone(ctx, timezone)
	})
	if err != nil {
		if errors.Is(err, store.ErrTimezoneNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return timezone, nil
}

// Delete removes one of the principal's records. Deleting the same id twice
// answers 404 the second time.
func (s *TimezoneService) Delete(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	err = s.sessions.WithTransaction(ctx, func() error {
		return s.timezones.DeleteTimezone(ctx, user.UserID, req.Args.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrTimezoneNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return nil, nil
}

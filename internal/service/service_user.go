package service

import (
	"context"
	"errors"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/internal/utils"
	"github.com/mkarev/tzkeeper/models"
)

// UserService implements the self-service account operations. Get, Update,
// and Delete always act on the authenticated principal's own account: the
// {id} path argument is accepted by the route convention but deliberately
// ignored, so a principal can never address another account. Listing
// accounts is not offered at all.
type UserService struct {
	users      store.UserRepository
	sessions   TransactionScope
	principals *Principals
	validator  *Validator
	logger     *logger.Logger
}

// NewUserService constructs the user account service.
func NewUserService(users store.UserRepository, sessions TransactionScope, principals *Principals, validator *Validator, logger *logger.Logger) *UserService {
	return &UserService{
		users:      users,
		sessions:   sessions,
		principals: principals,
		validator:  validator,
		logger:     logger,
	}
}

// Create registers a new account. It is the only mutating operation open to
// anonymous requests. A taken login surfaces as a field-level validation
// failure after the insert's transaction has rolled back.
func (s *UserService) Create(ctx context.Context, req *models.Request) (any, error) {
	payload := &UserPayload{}
	if err := s.validator.DecodeAndValidate(req.Body, payload); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(*payload.Password)
	if err != nil {
		s.logger.Err(err).Str("func", "*UserService.Create").Msg("failed to hash password")
		return nil, err
	}

	user := models.User{
		Login:        *payload.Login,
		PasswordHash: passwordHash,
	}
	if payload.Name != nil {
		user.Name = *payload.Name
	}

	err = s.sessions.WithTransaction(ctx, func() error {
		user, err = s.users.CreateUser(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrLoginAlreadyExists) {
			return nil, NewValidationError("login", "is already taken")
		}
		return nil, err
	}

	return user, nil
}

// Get returns the authenticated principal's own account.
func (s *UserService) Get(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update rewrites the authenticated principal's login, name, and password.
// Like Create, a login conflict is reported as a validation failure.
func (s *UserService) Update(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	payload := &UserPayload{}
	if err := s.validator.DecodeAndValidate(req.Body, payload); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(*payload.Password)
	if err != nil {
		s.logger.Err(err).Str("func", "*UserService.Update").Msg("failed to hash password")
		return nil, err
	}

	user.Login = *payload.Login
	user.PasswordHash = passwordHash
	user.Name = ""
	if payload.Name != nil {
		user.Name = *payload.Name
	}

	err = s.sessions.WithTransaction(ctx, func() error {
		return s.users.UpdateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrLoginAlreadyExists) {
			return nil, NewValidationError("login", "is already taken")
		}
		return nil, err
	}

	return user, nil
}

// Delete removes the authenticated principal's account. Owned timezone
// records go with it through the foreign key cascade.
func (s *UserService) Delete(ctx context.Context, req *models.Request) (any, error) {
	user, err := currentUser(ctx, s.principals, s.users)
	if err != nil {
		return nil, err
	}

	err = s.sessions.WithTransaction(ctx, func() error {
		return s.users.DeleteUser(ctx, user.UserID)
	})
	if err != nil {
		return nil, err
	}

	return nil, nil
}

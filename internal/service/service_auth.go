package service

import (
	"context"
	"errors"

	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/internal/utils"
	"github.com/mkarev/tzkeeper/models"
)

// AuthService exchanges a login and password for a signed credential.
type AuthService struct {
	users      store.UserRepository
	principals *Principals
	validator  *Validator
	logger     *logger.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users store.UserRepository, principals *Principals, validator *Validator, logger *logger.Logger) *AuthService {
	return &AuthService{
		users:      users,
		principals: principals,
		validator:  validator,
		logger:     logger,
	}
}

// Login verifies the submitted login and password against the stored bcrypt
// digest and returns a fresh credential. An unknown login and a wrong
// password are indistinguishable to the caller: both yield
// [ErrInvalidCredentials].
func (s *AuthService) Login(ctx context.Context, req *models.Request) (any, error) {
	payload := &LoginPayload{}
	if err := s.validator.DecodeAndValidate(req.Body, payload); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByLogin(ctx, *payload.Login)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.VerifyPassword(*payload.Password, user.PasswordHash) {
		logger.FromContext(ctx).Debug().Str("login", user.Login).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, err := s.principals.IssueToken(user.UserID)
	if err != nil {
		s.logger.Err(err).Str("func", "*AuthService.Login").Msg("failed to issue token")
		return nil, err
	}

	return models.TokenResponse{Token: token.String()}, nil
}

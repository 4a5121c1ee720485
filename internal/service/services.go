// Package service implements the application's business operations over the
// store layer: authentication, self-service account management, and
// ownership-scoped timezone records. Operations share one uniform
// signature, func(ctx, *models.Request) (any, error), so the HTTP layer can
// register them declaratively.
package service

import (
	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/store"
)

// Services aggregates the application services behind a single composition
// root, mirroring how the storages are wired.
type Services struct {
	Principals *Principals
	Auth       *AuthService
	Users      *UserService
	Timezones  *TimezoneService
}

// NewServices wires the services over the given storages. One validator is
// shared by all of them.
func NewServices(storages *store.Storages, authCfg config.Auth, log *logger.Logger) *Services {
	validator := NewValidator()
	principals := NewPrincipals(authCfg, log.GetChildLogger())

	return &Services{
		Principals: principals,
		Auth:       NewAuthService(storages.Users, principals, validator, log.GetChildLogger()),
		Users:      NewUserService(storages.Users, storages.Sessions, principals, validator, log.GetChildLogger()),
		Timezones:  NewTimezoneService(storages.Timezones, storages.Users, storages.Sessions, principals, validator, log.GetChildLogger()),
	}
}

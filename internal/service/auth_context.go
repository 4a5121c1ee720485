package service

import (
	"context"
	"errors"
	"time"

	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/scope"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/internal/utils"
	"github.com/mkarev/tzkeeper/models"
)

// principalScopeKey memoizes the resolved principal for the request, so the
// Authorization header is inspected at most once no matter how many times a
// handler asks for the current user.
const principalScopeKey scope.Key = "auth.principal"

// authHeader is the fixed request header carrying the signed credential.
const authHeader = "Authorization"

// principal is the memoized resolution result. ok is false for anonymous
// requests (missing, malformed, expired, or tampered credential).
type principal struct {
	id int64
	ok bool
}

// Principals is the authentication context: it issues signed credentials
// and lazily resolves the principal of the current request. Resolution
// never fails on bad input; every credential problem simply yields an
// anonymous request.
type Principals struct {
	signKey       string
	issuer        string
	tokenDuration time.Duration
	logger        *logger.Logger
}

// NewPrincipals constructs the authentication context from the auth
// configuration. The returned value is safe for concurrent use; all
// per-request state lives in the request scope.
func NewPrincipals(cfg config.Auth, logger *logger.Logger) *Principals {
	return &Principals{
		signKey:       cfg.TokenSignKey,
		issuer:        cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		logger:        logger,
	}
}

// IssueToken produces a signed credential embedding the principal id, valid
// for the configured duration (24h by default).
func (p *Principals) IssueToken(userID int64) (models.Token, error) {
	return utils.GenerateJWTToken(p.issuer, userID, p.tokenDuration, p.signKey)
}

// Resolve returns the principal id of the current request, or ok=false for
// anonymous requests. The resolution runs at most once per request: the
// credential is read from the request bound into the scope, verified
// (signature, issuer, expiry) and its subject parsed as an integer id; any
// failure along the way is treated as "no principal", never as an error.
func (p *Principals) Resolve(ctx context.Context) (int64, bool) {
	resolved, err := scope.ResolveAs(ctx, principalScopeKey, func() (principal, error) {
		r, err := scope.Request(ctx)
		if err != nil {
			return principal{}, err
		}

		header := r.Header.Get(authHeader)
		if header == "" {
			return principal{}, nil
		}

		tokenString, err := utils.ParseBearerToken(header)
		if err != nil {
			logger.FromContext(ctx).Debug().Err(err).Msg("malformed authorization header")
			return principal{}, nil
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, p.signKey, p.issuer)
		if err != nil {
			logger.FromContext(ctx).Debug().Err(err).Msg("credential rejected")
			return principal{}, nil
		}

		return principal{id: token.UserID, ok: true}, nil
	})
	if err != nil {
		p.logger.Err(err).Str("func", "*Principals.Resolve").Msg("principal resolution outside request scope")
		return 0, false
	}

	return resolved.id, resolved.ok
}

// currentUser resolves the request's principal and loads its user row
// through the per-request session. It is the shared "who is calling"
// helper used by every principal-scoped operation: an anonymous request or
// a principal whose account no longer exists yields [ErrInvalidCredentials].
func currentUser(ctx context.Context, principals *Principals, users store.UserRepository) (models.User, error) {
	id, ok := principals.Resolve(ctx)
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	return user, nil
}

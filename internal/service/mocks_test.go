package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/scope"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/models"
)

// mockUserRepository implements store.UserRepository for unit tests.
// Each method field can be overridden per test case.
type mockUserRepository struct {
	createUserFn      func(ctx context.Context, user models.User) (models.User, error)
	findUserByIDFn    func(ctx context.Context, userID int64) (models.User, error)
	findUserByLoginFn func(ctx context.Context, login string) (models.User, error)
	updateUserFn      func(ctx context.Context, user models.User) error
	deleteUserFn      func(ctx context.Context, userID int64) error
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return m.createUserFn(ctx, user)
}

func (m *mockUserRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return m.findUserByIDFn(ctx, userID)
}

func (m *mockUserRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	return m.findUserByLoginFn(ctx, login)
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, user models.User) error {
	return m.updateUserFn(ctx, user)
}

func (m *mockUserRepository) DeleteUser(ctx context.Context, userID int64) error {
	return m.deleteUserFn(ctx, userID)
}

// mockTimezoneRepository implements store.TimezoneRepository for unit tests.
type mockTimezoneRepository struct {
	createTimezoneFn func(ctx context.Context, timezone models.Timezone) (models.Timezone, error)
	getTimezoneFn    func(ctx context.Context, userID, timezoneID int64) (models.Timezone, error)
	listTimezonesFn  func(ctx context.Context, userID int64, filter store.TimezoneFilter) ([]models.Timezone, error)
	updateTimezoneFn func(ctx context.Context, timezone models.Timezone) error
	deleteTimezoneFn func(ctx context.Context, userID, timezoneID int64) error
}

func (m *mockTimezoneRepository) CreateTimezone(ctx context.Context, timezone models.Timezone) (models.Timezone, error) {
	return m.createTimezoneFn(ctx, timezone)
}

func (m *mockTimezoneRepository) GetTimezone(ctx context.Context, userID, timezoneID int64) (models.Timezone, error) {
	return m.getTimezoneFn(ctx, userID, timezoneID)
}

func (m *mockTimezoneRepository) ListTimezones(ctx context.Context, userID int64, filter store.TimezoneFilter) ([]models.Timezone, error) {
	return m.listTimezonesFn(ctx, userID, filter)
}

func (m *mockTimezoneRepository) UpdateTimezone(ctx context.Context, timezone models.Timezone) error {
	return m.updateTimezoneFn(ctx, timezone)
}

func (m *mockTimezoneRepository) DeleteTimezone(ctx context.Context, userID, timezoneID int64) error {
	return m.deleteTimezoneFn(ctx, userID, timezoneID)
}

// fakeTransactionScope satisfies TransactionScope by simply invoking fn and
// recording the outcomes it observed.
type fakeTransactionScope struct {
	committed  int
	rolledBack int
}

func (f *fakeTransactionScope) WithTransaction(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		f.rolledBack++
		return err
	}
	f.committed++
	return nil
}

var testAuthConfig = config.Auth{
	TokenSignKey:  "unit-test-sign-key",
	TokenIssuer:   "tzkeeper",
	TokenDuration: time.Hour,
}

func newTestPrincipals() *Principals {
	return NewPrincipals(testAuthConfig, logger.Nop())
}

// scopedContext returns a context carrying a fresh request scope with the
// given request bound into it, mimicking the scope middleware.
func scopedContext(r *http.Request) context.Context {
	store := scope.NewStore()
	ctx := scope.NewContext(context.Background(), store)
	store.Bind(scope.RequestKey, r)
	return ctx
}

// authenticatedContext builds a scope whose bound request carries a valid
// credential for userID.
func authenticatedContext(t *testing.T, principals *Principals, userID int64) context.Context {
	t.Helper()

	token, err := principals.IssueToken(userID)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token.String())

	return scopedContext(r)
}

// anonymousContext builds a scope whose bound request carries no credential.
func anonymousContext() context.Context {
	return scopedContext(httptest.NewRequest(http.MethodGet, "/", nil))
}

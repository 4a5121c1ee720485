package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarev/tzkeeper/internal/config"
	"github.com/mkarev/tzkeeper/internal/logger"
	"github.com/mkarev/tzkeeper/internal/service"
	"github.com/mkarev/tzkeeper/internal/store"
	"github.com/mkarev/tzkeeper/models"
)

// startTestServer boots the full stack over a throwaway SQLite database and
// returns a resty client pointed at it.
func startTestServer(t *testing.T) *resty.Client {
	t.Helper()

	log := logger.Nop()

	storageCfg := config.Storage{DB: config.DB{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tzkeeper_test.db"),
	}}

	storages, err := store.NewStorages(context.Background(), storageCfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.DB.Close() })

	authCfg := config.Auth{
		TokenSignKey:  "e2e-test-sign-key",
		TokenIssuer:   config.DefaultTokenIssuer,
		TokenDuration: time.Hour,
	}
	services := service.NewServices(storages, authCfg, log)

	serverCfg := config.Server{EnableTestReset: true}
	handler := NewHandler(services, storages, serverCfg, log)

	mux, err := handler.Init()
	require.NoError(t, err)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return resty.New().SetBaseURL(server.URL)
}

func registerUser(t *testing.T, client *resty.Client, login, password string) {
	t.Helper()

	resp, err := client.R().
		SetBody(map[string]string{"login": login, "password": password}).
		Post("/users")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
}

func loginUser(t *testing.T, client *resty.Client, login, password string) string {
	t.Helper()

	var tokenResponse models.TokenResponse
	resp, err := client.R().
		SetBody(map[string]string{"login": login, "password": password}).
		SetResult(&tokenResponse).
		Post("/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.NotEmpty(t, tokenResponse.Token)

	return tokenResponse.Token
}

func authed(client *resty.Client, token string) *resty.Request {
	return client.R().SetHeader("Authorization", "Bearer "+token)
}

func TestE2E_RegisterAndLogin(t *testing.T) {
	client := startTestServer(t)

	resp, err := client.R().
		SetBody(map[string]string{"login": "alice1", "password": "secret", "name": "Alice Liddell"}).
		Post("/users")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `"login":"alice1"`)
	assert.NotContains(t, string(resp.Body()), "password", "credentials must never appear in responses")

	token := loginUser(t, client, "alice1", "secret")
	assert.NotEmpty(t, token)
}

func TestE2E_DuplicateLoginIsValidationError(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")

	resp, err := client.R().
		SetBody(map[string]string{"login": "alice1", "password": "another"}).
		Post("/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "is already taken")

	// the rejected insert must leave nothing behind: the conflicting
	// password never became valid, the original one still works
	loginResp, err := client.R().
		SetBody(map[string]string{"login": "alice1", "password": "another"}).
		Post("/auth")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, loginResp.StatusCode())

	token := loginUser(t, client, "alice1", "secret")
	assert.NotEmpty(t, token)
}

func TestE2E_LoginFailures(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"wrong password", map[string]string{"login": "alice1", "password": "wrong"}, http.StatusUnauthorized},
		{"unknown login", map[string]string{"login": "nobody1", "password": "secret"}, http.StatusUnauthorized},
		{"missing fields", map[string]string{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.R().SetBody(tt.body).Post("/auth")
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode())
		})
	}
}

func TestE2E_UnauthorizedMatrix(t *testing.T) {
	client := startTestServer(t)

	tests := []struct {
		name    string
		request func() *resty.Request
	}{
		{"no token", func() *resty.Request { return client.R() }},
		{"garbage token", func() *resty.Request { return authed(client, "garbage") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.request().Get("/timezones")
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
			assert.Contains(t, string(resp.Body()), "Invalid credentials")
		})
	}
}

func TestE2E_TimezoneLifecycle(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")
	token := loginUser(t, client, "alice1", "secret")

	// create
	var created models.Timezone
	resp, err := authed(client, token).
		SetBody(map[string]any{"city": "Moscow", "gmt_delta_seconds": 10800}).
		SetResult(&created).
		Post("/timezones")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.NotZero(t, created.ID)

	// read back
	var fetched models.Timezone
	resp, err = authed(client, token).
		SetResult(&fetched).
		Get("/timezones/" + strconv.FormatInt(created.ID, 10))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Moscow", fetched.City)
	assert.Equal(t, int64(10800), fetched.GMTDeltaSeconds)

	// update round-trip
	var updated models.Timezone
	resp, err = authed(client, token).
		SetBody(map[string]any{"city": "Berlin", "gmt_delta_seconds": 3600}).
		SetResult(&updated).
		Put("/timezones/" + strconv.FormatInt(created.ID, 10))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "Berlin", updated.City)

	// delete, then delete again
	resp, err = authed(client, token).Delete("/timezones/" + strconv.FormatInt(created.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = authed(client, token).Delete("/timezones/" + strconv.FormatInt(created.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestE2E_ListWithCityFilter(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")
	token := loginUser(t, client, "alice1", "secret")

	for _, city := range []string{"Moscow", "London", "Los Angeles"} {
		resp, err := authed(client, token).
			SetBody(map[string]any{"city": city, "gmt_delta_seconds": 0}).
			Post("/timezones")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
	}

	var all []models.Timezone
	resp, err := authed(client, token).SetResult(&all).Get("/timezones")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Len(t, all, 3)

	var filtered []models.Timezone
	resp, err = authed(client, token).
		SetQueryParam("q", "Lo").
		SetResult(&filtered).
		Get("/timezones")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, filtered, 2)
	assert.Equal(t, "London", filtered[0].City)
	assert.Equal(t, "Los Angeles", filtered[1].City)
}

func TestE2E_OwnershipIsolation(t *testing.T) {
	client := startTestServer(t)

	registerUser(t, client, "alice1", "secret")
	registerUser(t, client, "bobby1", "secret")
	aliceToken := loginUser(t, client, "alice1", "secret")
	bobToken := loginUser(t, client, "bobby1", "secret")

	var created models.Timezone
	resp, err := authed(client, aliceToken).
		SetBody(map[string]any{"city": "Moscow", "gmt_delta_seconds": 10800}).
		SetResult(&created).
		Post("/timezones")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	// another principal sees someone else's record as missing
	id := strconv.FormatInt(created.ID, 10)
	for _, probe := range []func() (*resty.Response, error){
		func() (*resty.Response, error) { return authed(client, bobToken).Get("/timezones/" + id) },
		func() (*resty.Response, error) {
			return authed(client, bobToken).
				SetBody(map[string]any{"city": "Taken", "gmt_delta_seconds": 0}).
				Put("/timezones/" + id)
		},
		func() (*resty.Response, error) { return authed(client, bobToken).Delete("/timezones/" + id) },
	} {
		resp, err := probe()
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	}

	var listed []models.Timezone
	resp, err = authed(client, bobToken).SetResult(&listed).Get("/timezones")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestE2E_UserSelfService(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")
	token := loginUser(t, client, "alice1", "secret")

	// any {id} resolves to the caller's own account
	var fetched models.User
	resp, err := authed(client, token).SetResult(&fetched).Get("/users/999999")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "alice1", fetched.Login)

	// update own login and password
	resp, err = authed(client, token).
		SetBody(map[string]string{"login": "alice2", "password": "newsecret"}).
		Put("/users/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	loginUser(t, client, "alice2", "newsecret")

	// delete own account; the credential dies with it
	resp, err = authed(client, token).Delete("/users/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = authed(client, token).Get("/timezones")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestE2E_RouteMissesAreJSON(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")
	token := loginUser(t, client, "alice1", "secret")

	// non-numeric id is a routing miss, not a validation failure
	resp, err := authed(client, token).Get("/timezones/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "Not found")

	// unknown path
	resp, err = client.R().Get("/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	// method miss on a known path
	resp, err = client.R().Patch("/timezones")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "Method not allowed")
}

func TestE2E_ValidationErrorShape(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")
	token := loginUser(t, client, "alice1", "secret")

	var response models.ValidationErrorResponse
	resp, err := authed(client, token).
		SetBody(map[string]any{"gmt_delta_seconds": 99999}).
		SetError(&response).
		Post("/timezones")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode())

	assert.Equal(t, "Validation Error", response.Description)
	assert.Equal(t, []string{"is missing"}, response.Details.Fields["city"])
	assert.Equal(t, []string{"value out of range"}, response.Details.Fields["gmt_delta_seconds"])
}

func TestE2E_TestResetWipesData(t *testing.T) {
	client := startTestServer(t)
	registerUser(t, client, "alice1", "secret")
	token := loginUser(t, client, "alice1", "secret")

	resp, err := authed(client, token).
		SetBody(map[string]any{"city": "Moscow", "gmt_delta_seconds": 10800}).
		Post("/timezones")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().Post("/restart")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	// the account is gone along with its records
	resp, err = client.R().
		SetBody(map[string]string{"login": "alice1", "password": "secret"}).
		Post("/auth")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

package httptransport

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounthandler "bloodlink/internal/account/handler"
	"bloodlink/internal/account/jwt"
	accountservice "bloodlink/internal/account/service"
	accountstore "bloodlink/internal/account/store"
	donorhandler "bloodlink/internal/donor/handler"
	donorservice "bloodlink/internal/donor/service"
	donorstore "bloodlink/internal/donor/store"
	hospitalhandler "bloodlink/internal/hospital/handler"
	hospitalservice "bloodlink/internal/hospital/service"
	hospitalstore "bloodlink/internal/hospital/store/hospital"
	requeststore "bloodlink/internal/hospital/store/request"
	"bloodlink/internal/matching"
	"bloodlink/internal/ratelimit"
	"bloodlink/pkg/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.Default()

	donors := donorstore.NewInMemory()
	donorSvc := donorservice.New(donors, donorservice.WithLogger(logger))
	hospitalSvc := hospitalservice.New(
		hospitalstore.NewInMemory(),
		requeststore.NewInMemory(),
		matching.New(donors),
		donors,
		hospitalservice.WithLogger(logger),
	)
	tokens := jwt.NewService("test-signing-key", time.Hour)
	accountSvc := accountservice.New(accountstore.NewInMemory(), donorSvc, hospitalSvc, tokens)

	return NewRouter(Deps{
		Logger:    logger,
		Tokens:    tokens,
		Accounts:  accounthandler.New(accountSvc, logger),
		Donors:    donorhandler.New(donorSvc, logger),
		Hospitals: hospitalhandler.New(hospitalSvc, logger),
	})
}

func registerViaHTTP(t *testing.T, router http.Handler, body string) *accounthandler.AuthResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return testutil.UnmarshalResponse[accounthandler.AuthResponse](t, rec)
}

const donorBody = `{
	"email": "ravi@example.com",
	"password": "correct-horse",
	"role": "donor",
	"donor": {
		"name": "Ravi Kumar",
		"phone": "+91-98000-12345",
		"blood_type": "O+",
		"age": 34,
		"city": "Delhi"
	}
}`

const hospitalBody = `{
	"email": "admin@citygeneral.example.com",
	"password": "correct-horse",
	"role": "hospital",
	"hospital": {
		"name": "City General",
		"phone": "+91-11-2300-0000",
		"city": "Delhi"
	}
}`

func authedGet(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return testutil.DoRequest(router, req)
}

func TestRouterAuthFlow(t *testing.T) {
	router := newTestRouter(t)
	registered := registerViaHTTP(t, router, donorBody)

	t.Run("bearer token reaches the donor profile", func(t *testing.T) {
		rec := authedGet(router, "/donors/me", registered.Token)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[donorhandler.DonorResponse](t, rec)
		assert.Equal(t, "Ravi Kumar", resp.Name)
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		rec := authedGet(router, "/donors/me", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("donor token cannot reach hospital routes", func(t *testing.T) {
		rec := authedGet(router, "/hospitals/dashboard", registered.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("auth me works for any role", func(t *testing.T) {
		rec := authedGet(router, "/auth/me", registered.Token)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouterRoleFencing(t *testing.T) {
	router := newTestRouter(t)
	registerViaHTTP(t, router, donorBody)
	hospital := registerViaHTTP(t, router, hospitalBody)

	t.Run("hospital token reaches the dashboard", func(t *testing.T) {
		rec := authedGet(router, "/hospitals/dashboard", hospital.Token)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("hospital token cannot reach donor routes", func(t *testing.T) {
		rec := authedGet(router, "/donors/me", hospital.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("donor listing stays public", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthRateLimiting(t *testing.T) {
	logger := slog.Default()
	donors := donorstore.NewInMemory()
	donorSvc := donorservice.New(donors)
	hospitalSvc := hospitalservice.New(
		hospitalstore.NewInMemory(),
		requeststore.NewInMemory(),
		matching.New(donors),
		donors,
	)
	tokens := jwt.NewService("test-signing-key", time.Hour)
	accountSvc := accountservice.New(accountstore.NewInMemory(), donorSvc, hospitalSvc, tokens)

	router := NewRouter(Deps{
		Logger:      logger,
		Tokens:      tokens,
		Accounts:    accounthandler.New(accountSvc, logger),
		Donors:      donorhandler.New(donorSvc, logger),
		Hospitals:   hospitalhandler.New(hospitalSvc, logger),
		AuthLimiter: ratelimit.NewSlidingWindow(2, time.Minute),
	})

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email": "nobody@example.com", "password": "wrong-password"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "1.2.3.4:5000"
		return testutil.DoRequest(router, req)
	}

	require.Equal(t, http.StatusUnauthorized, login().Code)
	require.Equal(t, http.StatusUnauthorized, login().Code)

	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	t.Run("public donor listing is not throttled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/donors", nil)
		req.RemoteAddr = "1.2.3.4:5000"
		assert.Equal(t, http.StatusOK, testutil.DoRequest(router, req).Code)
	})
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[map[string]string](t, rec)
	assert.Equal(t, "ok", (*resp)["status"])
}

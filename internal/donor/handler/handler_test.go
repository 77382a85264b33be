package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/internal/donor/models"
	"bloodlink/internal/donor/service"
	"bloodlink/internal/donor/store"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/testutil"
)

func newDonorRouter(t *testing.T) (*chi.Mux, *service.Service) {
	t.Helper()
	svc := service.New(store.NewInMemory(), service.WithLogger(slog.Default()))
	h := New(svc, slog.Default())

	router := chi.NewRouter()
	h.RegisterPublic(router)
	h.RegisterDonor(router)
	return router, svc
}

func registerDonor(t *testing.T, svc *service.Service, accountID domain.AccountID, bt domain.BloodType, coords *geo.Point) *models.Donor {
	t.Helper()
	donor, err := svc.Register(context.Background(), accountID, service.RegisterInput{
		Name:      "Ravi Kumar",
		Email:     "ravi@example.com",
		Phone:     "+91-98000-12345",
		BloodType: bt,
		Age:       34,
		Location:  models.Location{City: "Delhi", Coordinates: coords},
	})
	require.NoError(t, err)
	return donor
}

func TestListDonors(t *testing.T) {
	router, svc := newDonorRouter(t)
	registerDonor(t, svc, domain.AccountID(uuid.New()), domain.OPositive,
		&geo.Point{Longitude: 77.20, Latitude: 28.61})
	registerDonor(t, svc, domain.AccountID(uuid.New()), domain.ABNegative,
		&geo.Point{Longitude: 72.87, Latitude: 19.07})

	t.Run("lists all donors", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[struct {
			Donors []DonorResponse `json:"donors"`
			Count  int             `json:"count"`
		}](t, rec)
		assert.Equal(t, 2, resp.Count)
		assert.Len(t, resp.Donors, 2)
	})

	t.Run("filters by blood type", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors?bloodType=AB-", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[struct {
			Donors []DonorResponse `json:"donors"`
		}](t, rec)
		require.Len(t, resp.Donors, 1)
		assert.Equal(t, "AB-", resp.Donors[0].BloodType)
	})

	t.Run("accepts a comma-separated blood type set", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors?bloodType=AB-,O%2B,AB-", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[struct {
			Donors []DonorResponse `json:"donors"`
		}](t, rec)
		assert.Len(t, resp.Donors, 2)
	})

	t.Run("proximity search returns nearest donors only", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet,
			"/donors?lat=28.62&lng=77.21&maxDistance=50000", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[struct {
			Donors []DonorResponse `json:"donors"`
		}](t, rec)
		require.Len(t, resp.Donors, 1)
		assert.Equal(t, "O+", resp.Donors[0].BloodType)
	})

	t.Run("rejects invalid blood type", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors?bloodType=Z%2B", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects lat without lng", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors?lat=28.62", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects maxDistance without origin", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors?maxDistance=1000", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCompatibility(t *testing.T) {
	router, _ := newDonorRouter(t)

	t.Run("universal donor can give to everyone", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors/compatibility/O-", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[CompatibilityResponse](t, rec)
		assert.Equal(t, "O-", resp.BloodType)
		assert.Len(t, resp.CanDonateTo, 8)
		assert.Equal(t, []string{"O-"}, resp.CanTakeFrom)
	})

	t.Run("universal recipient can take from everyone", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors/compatibility/AB%2B", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[CompatibilityResponse](t, rec)
		assert.Len(t, resp.CanTakeFrom, 8)
		assert.Equal(t, []string{"AB+"}, resp.CanDonateTo)
	})

	t.Run("unknown blood type rejected", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors/compatibility/ZZ", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDonorMe(t *testing.T) {
	router, svc := newDonorRouter(t)
	accountID := domain.AccountID(uuid.New())
	registerDonor(t, svc, accountID, domain.BPositive, nil)

	t.Run("returns own profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/donors/me", nil)
		req = testutil.WithAccount(req, accountID, domain.RoleDonor)
		rec := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[DonorResponse](t, rec)
		assert.Equal(t, "B+", resp.BloodType)
		assert.True(t, resp.IsAvailable)
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/donors/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("account without profile gets 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/donors/me", nil)
		req = testutil.WithAccount(req, domain.AccountID(uuid.New()), domain.RoleDonor)
		rec := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestToggleAvailability(t *testing.T) {
	router, svc := newDonorRouter(t)
	accountID := domain.AccountID(uuid.New())
	registerDonor(t, svc, accountID, domain.ONegative, nil)

	req := httptest.NewRequest(http.MethodPatch, "/donors/availability", nil)
	req = testutil.WithAccount(req, accountID, domain.RoleDonor)
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[DonorResponse](t, rec)
	assert.False(t, resp.IsAvailable)

	req = httptest.NewRequest(http.MethodPatch, "/donors/availability", nil)
	req = testutil.WithAccount(req, accountID, domain.RoleDonor)
	rec = testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = testutil.UnmarshalResponse[DonorResponse](t, rec)
	assert.True(t, resp.IsAvailable)
}

func TestUpdateProfile(t *testing.T) {
	router, svc := newDonorRouter(t)
	accountID := domain.AccountID(uuid.New())
	registerDonor(t, svc, accountID, domain.APositive, nil)

	t.Run("updates provided fields only", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/donors/profile", map[string]any{
			"city":      "Chennai",
			"longitude": 80.27,
			"latitude":  13.08,
		})
		req = testutil.WithAccount(req, accountID, domain.RoleDonor)
		rec := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[DonorResponse](t, rec)
		assert.Equal(t, "Chennai", resp.Location.City)
		require.NotNil(t, resp.Location.Latitude)
		assert.InDelta(t, 13.08, *resp.Location.Latitude, 1e-9)
		assert.Equal(t, "A+", resp.BloodType, "blood type never changes via profile update")
	})

	t.Run("rejects longitude without latitude", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/donors/profile", map[string]any{
			"longitude": 80.27,
		})
		req = testutil.WithAccount(req, accountID, domain.RoleDonor)
		rec := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed last_donated", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/donors/profile", map[string]any{
			"last_donated": "yesterday",
		})
		req = testutil.WithAccount(req, accountID, domain.RoleDonor)
		rec := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	donorhandler "bloodlink/internal/donor/handler"
	donormodels "bloodlink/internal/donor/models"
	donorstore "bloodlink/internal/donor/store"
	"bloodlink/internal/hospital/models"
	"bloodlink/internal/hospital/service"
	hospitalstore "bloodlink/internal/hospital/store/hospital"
	requeststore "bloodlink/internal/hospital/store/request"
	"bloodlink/internal/matching"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/testutil"
)

type fixture struct {
	router  *chi.Mux
	service *service.Service
	donors  *donorstore.InMemory
	account domain.AccountID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	donors := donorstore.NewInMemory()
	svc := service.New(
		hospitalstore.NewInMemory(),
		requeststore.NewInMemory(),
		matching.New(donors),
		donors,
		service.WithLogger(slog.Default()),
	)
	h := New(svc, slog.Default())

	router := chi.NewRouter()
	h.RegisterHospital(router)

	account := domain.AccountID(uuid.New())
	_, err := svc.Register(context.Background(), account, service.RegisterInput{
		Name:  "City General",
		Email: "admin@citygeneral.example.com",
		Phone: "+91-11-2300-0000",
		Location: models.Location{
			City:        "Delhi",
			Coordinates: &geo.Point{Longitude: 77.21, Latitude: 28.62},
		},
	})
	require.NoError(t, err)

	return &fixture{router: router, service: svc, donors: donors, account: account}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	req = testutil.WithAccount(req, f.account, domain.RoleHospital)
	return testutil.DoRequest(f.router, req)
}

func (f *fixture) addDonor(t *testing.T, bt domain.BloodType, coords *geo.Point) {
	t.Helper()
	donor, err := donormodels.NewDonor(
		domain.DonorID(uuid.New()), domain.AccountID(uuid.New()),
		"Test Donor", "donor@example.com", "+91-90000-00000",
		bt, 30, donormodels.Location{Coordinates: coords}, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, f.donors.Create(context.Background(), donor))
}

func TestHospitalMe(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/hospitals/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[HospitalResponse](t, rec)
	assert.Equal(t, "City General", resp.Name)

	t.Run("unauthenticated gets 401", func(t *testing.T) {
		rec := testutil.DoRequest(f.router, httptest.NewRequest(http.MethodGet, "/hospitals/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, domain.ONegative, &geo.Point{Longitude: 77.20, Latitude: 28.61})

	t.Run("creates request and returns matched donors", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
			"blood_type": "A+",
			"units":      2,
			"urgency":    "high",
		})
		rec := f.do(req)
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := testutil.UnmarshalResponse[CreateRequestResponse](t, rec)
		assert.False(t, resp.Request.IsFulfilled)
		assert.Equal(t, "A+", resp.Request.BloodType)
		require.Len(t, resp.MatchedDonors, 1)
		assert.Equal(t, "O-", resp.MatchedDonors[0].BloodType)
	})

	t.Run("urgency defaults to medium", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
			"blood_type": "B+",
			"units":      1,
		})
		rec := f.do(req)
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := testutil.UnmarshalResponse[CreateRequestResponse](t, rec)
		assert.Equal(t, "medium", resp.Request.Urgency)
	})

	t.Run("rejects unknown blood type", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
			"blood_type": "XY",
			"units":      1,
		})
		assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
	})

	t.Run("rejects non-positive units", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
			"blood_type": "A+",
			"units":      0,
		})
		assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
	})

	t.Run("rejects bad urgency", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
			"blood_type": "A+",
			"units":      1,
			"urgency":    "critical",
		})
		assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
	})
}

func TestListRequests(t *testing.T) {
	f := newFixture(t)

	for _, bt := range []string{"A+", "O-"} {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
			"blood_type": bt,
			"units":      1,
		})
		require.Equal(t, http.StatusCreated, f.do(req).Code)
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/hospitals/requests", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[struct {
		Requests []RequestResponse `json:"requests"`
		Count    int               `json:"count"`
	}](t, rec)
	assert.Equal(t, 2, resp.Count)
}

func TestFulfillRequest(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
		"blood_type": "A+",
		"units":      2,
	})
	rec := f.do(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := testutil.UnmarshalResponse[CreateRequestResponse](t, rec)

	fulfillPath := "/hospitals/requests/" + created.Request.ID + "/fulfill"

	t.Run("fulfills an open request", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodPatch, fulfillPath, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[RequestResponse](t, rec)
		assert.True(t, resp.IsFulfilled)
		assert.NotNil(t, resp.FulfilledAt)
	})

	t.Run("second fulfillment conflicts", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodPatch, fulfillPath, nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed id is rejected", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodPatch, "/hospitals/requests/not-a-uuid/fulfill", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodPatch, "/hospitals/requests/"+uuid.NewString()+"/fulfill", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFindDonors(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, domain.ONegative, &geo.Point{Longitude: 77.20, Latitude: 28.61})
	f.addDonor(t, domain.ONegative, &geo.Point{Longitude: 72.87, Latitude: 19.07})

	t.Run("requires bloodType", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/hospitals/donors", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("searches the hospital's catchment", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/hospitals/donors?bloodType=A%2B", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[struct {
			Donors []donorhandler.DonorResponse `json:"donors"`
			Count  int                          `json:"count"`
		}](t, rec)
		assert.Equal(t, 1, resp.Count, "distant donor is outside the default catchment")
	})

	t.Run("maxDistance widens the search", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/hospitals/donors?bloodType=A%2B&maxDistance=2000000", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.UnmarshalResponse[struct {
			Count int `json:"count"`
		}](t, rec)
		assert.Equal(t, 2, resp.Count)
	})
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.addDonor(t, domain.OPositive, nil)
	f.addDonor(t, domain.ABNegative, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/hospitals/requests", map[string]any{
		"blood_type": "O+",
		"units":      1,
	})
	require.Equal(t, http.StatusCreated, f.do(req).Code)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/hospitals/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[models.DashboardStats](t, rec)
	assert.Equal(t, 2, resp.TotalDonors)
	assert.Equal(t, 2, resp.AvailableDonors)
	assert.Equal(t, 1, resp.ActiveRequests)
	assert.Len(t, resp.BloodTypeStats, 8)
	assert.Len(t, resp.RecentRequests, 1)
}

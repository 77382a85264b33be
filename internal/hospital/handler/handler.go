package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	donormodels "bloodlink/internal/donor/models"
	"bloodlink/internal/hospital/models"
	"bloodlink/internal/hospital/service"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
	"bloodlink/pkg/requestcontext"
)

// Service defines the hospital operations the handler depends on.
type Service interface {
	ProfileByAccount(ctx context.Context, accountID domain.AccountID) (*models.Hospital, error)
	AddRequest(ctx context.Context, accountID domain.AccountID, in service.AddRequestInput) (*models.BloodRequest, []*donormodels.Donor, error)
	ListRequests(ctx context.Context, accountID domain.AccountID) ([]*models.BloodRequest, error)
	FulfillRequest(ctx context.Context, accountID domain.AccountID, requestID domain.RequestID) (*models.BloodRequest, error)
	FindDonors(ctx context.Context, accountID domain.AccountID, bloodType domain.BloodType, radiusMeters float64) ([]*donormodels.Donor, error)
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

// Handler wires hospital endpoints to the hospital service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a hospital handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterHospital mounts the endpoints restricted to hospital accounts.
func (h *Handler) RegisterHospital(r chi.Router) {
	r.Get("/hospitals/me", h.HandleMe)
	r.Post("/hospitals/requests", h.HandleCreateRequest)
	r.Get("/hospitals/requests", h.HandleListRequests)
	r.Patch("/hospitals/requests/{requestID}/fulfill", h.HandleFulfillRequest)
	r.Get("/hospitals/donors", h.HandleFindDonors)
	r.Get("/hospitals/dashboard", h.HandleDashboard)
}

// HandleMe handles GET /hospitals/me requests.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	hospital, err := h.service.ProfileByAccount(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHospital(hospital))
}

// HandleCreateRequest handles POST /hospitals/requests. The response carries
// the recorded request plus the donors matched for it.
func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateRequestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	request, donors, err := h.service.AddRequest(ctx, accountID, service.AddRequestInput{
		BloodType: req.ParsedBloodType(),
		Units:     req.Units,
		Urgency:   req.ParsedUrgency(),
		Notes:     req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "blood request created",
		"request_id", requestID,
		"blood_request_id", request.ID,
		"blood_type", request.BloodType,
		"urgency", request.Urgency,
		"matched_donors", len(donors),
	)
	httputil.WriteJSON(w, http.StatusCreated, &CreateRequestResponse{
		Request:       FromRequest(request),
		MatchedDonors: matchedDonors(donors),
	})
}

// HandleListRequests handles GET /hospitals/requests.
func (h *Handler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	requests, err := h.service.ListRequests(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"requests": FromRequests(requests),
		"count":    len(requests),
	})
}

// HandleFulfillRequest handles PATCH /hospitals/requests/{requestID}/fulfill.
func (h *Handler) HandleFulfillRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.service.FulfillRequest(ctx, accountID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "blood request fulfilled",
		"request_id", requestcontext.RequestID(ctx),
		"blood_request_id", request.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRequest(request))
}

// HandleFindDonors handles GET /hospitals/donors. Supported query
// parameters: bloodType (required), maxDistance (meters).
func (h *Handler) HandleFindDonors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	bloodType, err := domain.ParseBloodType(r.URL.Query().Get("bloodType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var radius float64
	if raw := r.URL.Query().Get("maxDistance"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "maxDistance must be a positive number of meters"))
			return
		}
	}

	donors, err := h.service.FindDonors(ctx, accountID, bloodType, radius)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"donors": matchedDonors(donors),
		"count":  len(donors),
	})
}

// HandleDashboard handles GET /hospitals/dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAccount(w, ctx); !ok {
		return
	}

	stats, err := h.service.Dashboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard aggregation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) requireAccount(w http.ResponseWriter, ctx context.Context) (domain.AccountID, bool) {
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.AccountID{}, false
	}
	return accountID, true
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/compat"
	"bloodlink/internal/donor/models"
	"bloodlink/internal/donor/service"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/httputil"
	pstrings "bloodlink/pkg/platform/strings"
	"bloodlink/pkg/requestcontext"
)

// Service defines the donor operations the handler depends on.
type Service interface {
	Search(ctx context.Context, filter service.SearchFilter) ([]*models.Donor, error)
	ProfileByAccount(ctx context.Context, accountID domain.AccountID) (*models.Donor, error)
	ToggleAvailability(ctx context.Context, accountID domain.AccountID) (*models.Donor, error)
	UpdateProfile(ctx context.Context, accountID domain.AccountID, update models.ProfileUpdate) (*models.Donor, error)
}

// Handler wires donor endpoints to the donor service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a donor handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that do not require authentication.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/donors", h.HandleList)
	r.Get("/donors/compatibility/{bloodType}", h.HandleCompatibility)
}

// RegisterDonor mounts the endpoints restricted to donor accounts.
func (h *Handler) RegisterDonor(r chi.Router) {
	r.Get("/donors/me", h.HandleMe)
	r.Patch("/donors/availability", h.HandleToggleAvailability)
	r.Put("/donors/profile", h.HandleUpdateProfile)
}

// HandleList handles GET /donors requests. Supported query parameters:
// bloodType (comma-separated set), available, lat, lng, maxDistance (meters).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	donors, err := h.service.Search(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "donor search failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"donors": FromDonors(donors),
		"count":  len(donors),
	})
}

// HandleCompatibility handles GET /donors/compatibility/{bloodType}.
func (h *Handler) HandleCompatibility(w http.ResponseWriter, r *http.Request) {
	bt, err := domain.ParseBloodType(chi.URLParam(r, "bloodType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	recipients, err := compat.CompatibleRecipients(bt)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	donors, err := compat.CompatibleDonors(bt)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &CompatibilityResponse{
		BloodType:   bt.String(),
		CanDonateTo: bloodTypeStrings(recipients),
		CanTakeFrom: bloodTypeStrings(donors),
	})
}

// HandleMe handles GET /donors/me requests.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	donor, err := h.service.ProfileByAccount(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonor(donor))
}

// HandleToggleAvailability handles PATCH /donors/availability requests.
func (h *Handler) HandleToggleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	donor, err := h.service.ToggleAvailability(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "donor availability toggled",
		"request_id", requestcontext.RequestID(ctx),
		"donor_id", donor.ID,
		"is_available", donor.IsAvailable,
	)
	httputil.WriteJSON(w, http.StatusOK, FromDonor(donor))
}

// HandleUpdateProfile handles PUT /donors/profile requests.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	accountID, ok := h.requireAccount(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	donor, err := h.service.UpdateProfile(ctx, accountID, req.ToProfileUpdate())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonor(donor))
}

func (h *Handler) requireAccount(w http.ResponseWriter, ctx context.Context) (domain.AccountID, bool) {
	accountID := requestcontext.AccountID(ctx)
	if accountID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.AccountID{}, false
	}
	return accountID, true
}

func filterFromQuery(r *http.Request) (service.SearchFilter, error) {
	q := r.URL.Query()
	var filter service.SearchFilter

	if raw := q.Get("bloodType"); raw != "" {
		for _, v := range pstrings.DedupeAndTrim(strings.Split(raw, ",")) {
			bt, err := domain.ParseBloodType(v)
			if err != nil {
				return filter, err
			}
			filter.BloodTypes = append(filter.BloodTypes, bt)
		}
	}

	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, dErrors.New(dErrors.CodeValidation, "available must be a boolean")
		}
		filter.AvailableOnly = available
	}

	latRaw, lngRaw := q.Get("lat"), q.Get("lng")
	if (latRaw == "") != (lngRaw == "") {
		return filter, dErrors.New(dErrors.CodeValidation, "lat and lng must be provided together")
	}
	if latRaw != "" {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil || lat < -90 || lat > 90 {
			return filter, dErrors.New(dErrors.CodeValidation, "lat must be between -90 and 90")
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil || lng < -180 || lng > 180 {
			return filter, dErrors.New(dErrors.CodeValidation, "lng must be between -180 and 180")
		}
		filter.Origin = &geo.Point{Longitude: lng, Latitude: lat}
	}

	if raw := q.Get("maxDistance"); raw != "" {
		if filter.Origin == nil {
			return filter, dErrors.New(dErrors.CodeValidation, "maxDistance requires lat and lng")
		}
		dist, err := strconv.ParseFloat(raw, 64)
		if err != nil || dist <= 0 {
			return filter, dErrors.New(dErrors.CodeValidation, "maxDistance must be a positive number of meters")
		}
		filter.MaxDistanceMeters = dist
	}

	return filter, nil
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bloodlink/internal/account/service"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/httputil"
	"bloodlink/pkg/requestcontext"
)

// Service defines the account operations the handler depends on.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*service.RegisterResult, error)
	Me(ctx context.Context, id domain.AccountID) (*service.MeResult, error)
	Activity(ctx context.Context, id domain.AccountID) ([]audit.Event, error)
}

// Handler wires the auth endpoints to the account service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an account handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints that do not require authentication.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAuthenticated mounts the endpoints available to any signed-in
// account regardless of role.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
	r.Get("/auth/activity", h.HandleActivity)
}

// HandleRegister handles POST /auth/register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Register(ctx, req.ToRegisterInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "account registered",
		"request_id", requestID,
		"account_id", result.Account.ID,
		"role", result.Account.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, &AuthResponse{
		Token:   result.Token,
		Account: FromAccount(result.Account),
	})
}

// HandleLogin handles POST /auth/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &AuthResponse{
		Token:   result.Token,
		Account: FromAccount(result.Account),
	})
}

// HandleMe handles GET /auth/me requests. The response carries the account
// plus its donor or hospital profile when one exists.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := requestcontext.AccountID(ctx)
	if accountID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	result, err := h.service.Me(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromMeResult(result))
}

// HandleActivity handles GET /auth/activity requests, listing the audit trail
// of the signed-in account oldest first.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := requestcontext.AccountID(ctx)
	if accountID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	events, err := h.service.Activity(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

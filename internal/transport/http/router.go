package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "bloodlink/internal/account/handler"
	donorhandler "bloodlink/internal/donor/handler"
	hospitalhandler "bloodlink/internal/hospital/handler"
	"bloodlink/internal/platform/middleware"
	"bloodlink/internal/ratelimit"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps holds everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Tokens    middleware.TokenValidator
	Accounts  *accounthandler.Handler
	Donors    *donorhandler.Handler
	Hospitals *hospitalhandler.Handler

	// AuthLimiter throttles register and login per client IP when set.
	AuthLimiter *ratelimit.SlidingWindow

	// Health lists dependencies /healthz probes; a nil checker is skipped
	// so callers can pass stores that may not be configured.
	Health []HealthChecker
}

// NewRouter assembles the full HTTP surface. Public routes carry request
// metadata only; the authenticated group additionally requires a valid
// bearer token, and donor and hospital routes are fenced by role.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestMeta)

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.AuthLimiter != nil {
			r.Use(ratelimit.Limit(deps.AuthLimiter, deps.Logger))
		}
		deps.Accounts.RegisterPublic(r)
	})
	r.Group(func(r chi.Router) {
		deps.Donors.RegisterPublic(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Logger))

		deps.Accounts.RegisterAuthenticated(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleDonor))
			deps.Donors.RegisterDonor(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleHospital))
			deps.Hospitals.RegisterHospital(r)
		})
	})

	return r
}

func healthHandler(checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, checker := range checkers {
			if checker == nil {
				continue
			}
			if err := checker.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

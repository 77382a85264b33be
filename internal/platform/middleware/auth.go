package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
	"bloodlink/pkg/requestcontext"
)

// TokenValidator validates bearer tokens for protected routes.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims carries the identity the core trusts unconditionally.
type TokenClaims struct {
	AccountID domain.AccountID
	Role      domain.Role
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated account into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithAccountID(ctx, claims.AccountID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose account role does not
// match. Must run after RequireAuth.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestcontext.Role(r.Context()) != role {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "requires "+role.String()+" role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package testutil

import (
	"net/http"

	"bloodlink/pkg/domain"
	"bloodlink/pkg/requestcontext"
)

// WithAccount injects an authenticated account into the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithAccount(req *http.Request, accountID domain.AccountID, role domain.Role) *http.Request {
	ctx := requestcontext.WithAccountID(req.Context(), accountID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

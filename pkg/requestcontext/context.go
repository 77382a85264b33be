// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by middleware and consumed by services. Keeping this package
// free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	accountID := requestcontext.AccountID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithAccountID(ctx, accountID)
//	ctx = requestcontext.WithRole(ctx, role)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"bloodlink/pkg/domain"
)

type (
	accountIDKey   struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// AccountID retrieves the authenticated account ID from the context.
// Returns the zero value (nil UUID) if not set.
func AccountID(ctx context.Context) domain.AccountID {
	if id, ok := ctx.Value(accountIDKey{}).(domain.AccountID); ok {
		return id
	}
	return domain.AccountID{}
}

// WithAccountID injects an account ID into the context.
func WithAccountID(ctx context.Context, id domain.AccountID) context.Context {
	return context.WithValue(ctx, accountIDKey{}, id)
}

// Role retrieves the authenticated account role from the context.
// Returns the empty role if not set.
func Role(ctx context.Context) domain.Role {
	if r, ok := ctx.Value(roleKey{}).(domain.Role); ok {
		return r
	}
	return ""
}

// WithRole injects an account role into the context.
func WithRole(ctx context.Context, r domain.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, r)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now retrieves the request-scoped time from the context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

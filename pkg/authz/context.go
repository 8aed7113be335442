package authz

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to prevent collisions.
type contextKey int

const (
	// principalKey stores the resolved Principal in request context.
	principalKey contextKey = iota
	// decisionKey stores the guard's pre-check Decision.
	decisionKey
	// requestIDKey stores the request ID for correlation.
	requestIDKey
)

// PrincipalFromContext retrieves the principal from the request context.
// The second return is false when no principal is stored; callers treat
// that as unauthenticated, never as an error.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// ContextWithPrincipal returns a new context with the principal attached.
// Called by the guard middleware after principal resolution.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// DecisionFromContext retrieves the guard's decision from the request
// context. Returns nil when no decision is stored.
func DecisionFromContext(ctx context.Context) *Decision {
	d, _ := ctx.Value(decisionKey).(*Decision)
	return d
}

// ContextWithDecision returns a new context with the decision attached.
func ContextWithDecision(ctx context.Context, d *Decision) context.Context {
	return context.WithValue(ctx, decisionKey, d)
}

// RequestIDFromContext retrieves the request ID from context. Returns the
// empty string if no request ID is stored.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithRequestID returns a new context with the request ID attached.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// EnsureRequestID returns a context with a request ID, generating one if
// needed. Returns the (possibly new) context and the request ID.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return ContextWithRequestID(ctx, id), id
}

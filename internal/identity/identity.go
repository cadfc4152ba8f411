// Package identity carries the authenticated caller through a request context.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

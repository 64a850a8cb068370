// Package auth issues and verifies the signed identity tokens carried in the
// "token" cookie.
package auth

import (
	"context"
	"time"
)

// Identity is the verified claim set of a presented token.
type Identity struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Verifier validates a raw token and returns the identity it carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

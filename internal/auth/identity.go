package auth

import (
	"context"

	"github.com/civigo/grievance-backend/internal/models"
)

// Identity is the caller resolved from a verified bearer token.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsOfficial reports whether the caller holds the official role.
func (i Identity) IsOfficial() bool {
	return i.Role == models.RoleOfficial
}

type contextKey struct{}

// WithIdentity attaches the resolved identity to the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom extracts the identity attached by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

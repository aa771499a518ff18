package auth

import (
	"context"

	"github.com/dayloop-io/dayloop/internal/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller attached to a request context.
// Session is nil when the caller authenticated with a bearer token.
type Identity struct {
	Person  *models.Person
	Session *models.Session
}

// ContextWithIdentity attaches an authenticated identity to a context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity attached by the auth
// middleware, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}

// RequirePerson returns the authenticated person or ErrAuthRequired.
func RequirePerson(ctx context.Context) (*models.Person, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.Person == nil {
		return nil, ErrAuthRequired
	}
	return identity.Person, nil
}

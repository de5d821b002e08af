package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type identityKey struct{}

// Identity is the authenticated caller of a request
type Identity struct {
	// Subject is the "sub" claim, the back-end user ID for admin tokens
	Subject string
	// Name is the "name" claim
	Name string
	// Claims are all validated claims of the token
	Claims jwt.MapClaims
}

// WithIdentity stores identity in ctx
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by the auth middleware
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

func newIdentity(claims jwt.MapClaims) *Identity {
	identity := &Identity{Claims: claims}
	identity.Subject, _ = claims.GetSubject()
	identity.Name, _ = claims["name"].(string)
	return identity
}

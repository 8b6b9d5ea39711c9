package auth

import (
	"context"

	"car-mzansi-connect/internal/models"
)

type tokenKey struct{}

// WithToken attaches a session token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// SessionContext resolves the signed-in user from the token carried by ctx.
// It satisfies the wizard's session accessor.
type SessionContext struct {
	Provider *Provider
}

func (s SessionContext) CurrentUser(ctx context.Context) (models.User, bool) {
	token, ok := TokenFrom(ctx)
	if !ok || s.Provider == nil {
		return models.User{}, false
	}
	user, err := s.Provider.Current(ctx, token)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

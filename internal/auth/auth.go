package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rahmatfauzi/modular-backend/internal/user"
)

// Claims is the access-token payload: the subject's username plus the
// registered claims. The jti (RegisteredClaims.ID) is a fresh random id per
// token and doubles as the denylist key.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserStore is the subset of the user repository the token lifecycle needs.
type UserStore interface {
	GetActiveByUsername(ctx context.Context, username string) (*user.User, error)
}

// Denylist records revoked token ids until at least their natural expiry and
// answers membership lookups on every token validation.
type Denylist interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type tokenCtxKey struct{}

// ContextWithToken stashes the raw bearer token so downstream flows (logout,
// password change) can revoke the exact token that authenticated the request.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext returns the raw bearer token stored by the auth
// middleware, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenCtxKey{}).(string)
	return token
}

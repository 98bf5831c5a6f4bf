package auth

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/user"
	"github.com/rahmatfauzi/modular-backend/pkg/logger"
)

// TokenService issues, validates and revokes HS256 access tokens. The
// denylist is optional; without one tokens stay valid until expiry and
// revocation fails as a configuration error.
type TokenService struct {
	users    UserStore
	denylist Denylist
	secret   []byte
	ttl      time.Duration
	logger   *slog.Logger
}

func NewTokenService(users UserStore, denylist Denylist, secret string, ttl time.Duration, lg *slog.Logger) *TokenService {
	if lg == nil {
		lg = logger.L()
	}
	return &TokenService{
		users:    users,
		denylist: denylist,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   lg,
	}
}

// GenerateAccessToken validates the credentials and signs a token with a
// fresh jti. Unknown username, inactive account and wrong password all
// collapse into the same credentials error.
func (s *TokenService) GenerateAccessToken(ctx context.Context, username, password string) (string, *internal.AppError) {
	u, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		return "", internal.ErrCredentialsInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", internal.ErrCredentialsInvalid
	}

	now := time.Now()
	claims := &Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", internal.NewInternal("failed to sign access token", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry only.
func (s *TokenService) Parse(tokenString string) (*Claims, *internal.AppError) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, internal.ErrAccessTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, internal.ErrAccessTokenInvalid
	}
	return claims, nil
}

// ValidateClaims checks the denylist (when configured) and resolves the
// subject. A missing or inactive user is reported as an invalid token, never
// as "user not found", so responses don't leak account existence.
func (s *TokenService) ValidateClaims(ctx context.Context, claims *Claims) (*user.User, *internal.AppError) {
	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.Contains(ctx, claims.ID)
		if err != nil {
			return nil, internal.NewInternal("denylist lookup failed", err)
		}
		if revoked {
			return nil, internal.ErrAccessTokenInvalid
		}
	}

	u, err := s.users.GetActiveByUsername(ctx, claims.Username)
	if err != nil {
		return nil, internal.ErrAccessTokenInvalid
	}
	return u, nil
}

// Authenticate is Parse followed by ValidateClaims, the middleware entry
// point.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*user.User, *internal.AppError) {
	claims, appErr := s.Parse(tokenString)
	if appErr != nil {
		return nil, appErr
	}
	return s.ValidateClaims(ctx, claims)
}

// RevokeAccessToken puts the token's jti on the denylist until its natural
// expiry. An unconfigured denylist is a configuration error, distinct from an
// invalid token.
func (s *TokenService) RevokeAccessToken(ctx context.Context, tokenString string) *internal.AppError {
	claims, appErr := s.Parse(tokenString)
	if appErr != nil {
		return appErr
	}
	if _, appErr := s.ValidateClaims(ctx, claims); appErr != nil {
		return appErr
	}
	if s.denylist == nil {
		return internal.ErrDenylistNotConfigured
	}

	userID, _ := strconv.ParseInt(claims.Subject, 10, 64)
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.denylist.Revoke(ctx, claims.ID, userID, expiresAt); err != nil {
		return internal.NewInternal("failed to revoke access token", err)
	}

	s.logger.Info("access token revoked", "jti", claims.ID, "user_id", userID)
	return nil
}

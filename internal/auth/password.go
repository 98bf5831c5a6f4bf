package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/mail"
	"github.com/rahmatfauzi/modular-backend/internal/user"
	"github.com/rahmatfauzi/modular-backend/pkg/logger"
)

// PasswordUserStore is the user access the password lifecycle needs.
type PasswordUserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, tx *gorm.DB, userID int64, passwordHash string) error
}

// PasswordChangedCallback runs inside the password-change transaction; an
// error rolls the change back. The bearer token is empty when the change was
// not driven by an authenticated request (e.g. a reset).
type PasswordChangedCallback func(ctx context.Context, userID int64, bearerToken string) error

// PasswordService implements password change, forgot/reset and the
// self-invalidating reset token: the token's jti is derived from the current
// password hash, so any password write silently invalidates all outstanding
// reset tokens without a revocation store.
type PasswordService struct {
	db         *gorm.DB
	users      PasswordUserStore
	mailer     mail.Mailer
	secret     []byte
	resetTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
	onChanged  []PasswordChangedCallback
}

func NewPasswordService(db *gorm.DB, users PasswordUserStore, mailer mail.Mailer, secret string, resetTTL time.Duration, bcryptCost int, lg *slog.Logger) *PasswordService {
	if lg == nil {
		lg = logger.L()
	}
	return &PasswordService{
		db:         db,
		users:      users,
		mailer:     mailer,
		secret:     []byte(secret),
		resetTTL:   resetTTL,
		bcryptCost: bcryptCost,
		logger:     lg,
	}
}

// OnPasswordChanged registers a callback to run after every successful
// password write, e.g. revoking the request's bearer token.
func (s *PasswordService) OnPasswordChanged(cb PasswordChangedCallback) {
	s.onChanged = append(s.onChanged, cb)
}

// ChangePassword verifies the current password before any persistence; a
// mismatch returns a single currentPassword/passwordMatch field error. The
// write and the registered callbacks share one transaction.
func (s *PasswordService) ChangePassword(ctx context.Context, actor *user.User, currentPassword, newPassword, bearerToken string) *internal.AppError {
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(currentPassword)); err != nil {
		return internal.NewFieldError("currentPassword", "passwordMatch", "current password does not match", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternal("failed to hash password", err)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.UpdatePassword(ctx, tx, actor.ID, string(hash)); err != nil {
			return err
		}
		return s.runCallbacks(ctx, actor.ID, bearerToken)
	})
	if txErr != nil {
		return internal.AsAppError(txErr)
	}

	s.logger.Info("password changed", "user_id", actor.ID)
	return nil
}

// ForgotPassword issues a reset token by mail. An unknown email succeeds
// silently to avoid account enumeration; an inactive account is the one case
// reported back to the caller.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) *internal.AppError {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		return internal.NewInternal("failed to look up account", err)
	}
	if !u.IsActive {
		return internal.NewFieldError("email", "emailActive", "email is not active", email)
	}

	token, appErr := s.GenerateResetToken(u)
	if appErr != nil {
		return appErr
	}
	if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		return internal.NewInternal("failed to send reset mail", err)
	}

	s.logger.Info("password reset mail sent", "user_id", u.ID)
	return nil
}

// ResetPassword consumes a reset token. The subsequent hash write changes
// the jti derivation input, so the token cannot be used twice.
func (s *PasswordService) ResetPassword(ctx context.Context, tokenString, newPassword string) *internal.AppError {
	u, appErr := s.ValidateResetToken(ctx, tokenString)
	if appErr != nil {
		return appErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternal("failed to hash password", err)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.UpdatePassword(ctx, tx, u.ID, string(hash)); err != nil {
			return err
		}
		return s.runCallbacks(ctx, u.ID, "")
	})
	if txErr != nil {
		return internal.AsAppError(txErr)
	}

	s.logger.Info("password reset completed", "user_id", u.ID)
	return nil
}

// GenerateResetToken signs a token whose jti is derived from the current
// password hash and the account creation time.
func (s *PasswordService) GenerateResetToken(u *user.User) (string, *internal.AppError) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        resetTokenID(u),
		Subject:   strconv.FormatInt(u.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", internal.NewInternal("failed to sign reset token", err)
	}
	return signed, nil
}

// ValidateResetToken recomputes the expected jti from the current user
// record. Every failure mode collapses into the same error so the response
// never reveals which check failed.
func (s *PasswordService) ValidateResetToken(ctx context.Context, tokenString string) (*user.User, *internal.AppError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, internal.ErrResetTokenInvalid
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, internal.ErrResetTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, internal.ErrResetTokenInvalid
	}
	u, lookupErr := s.users.GetByID(ctx, userID)
	if lookupErr != nil || !u.IsActive {
		return nil, internal.ErrResetTokenInvalid
	}

	expected := resetTokenID(u)
	if subtle.ConstantTimeCompare([]byte(claims.ID), []byte(expected)) != 1 {
		return nil, internal.ErrResetTokenInvalid
	}
	return u, nil
}

func (s *PasswordService) runCallbacks(ctx context.Context, userID int64, bearerToken string) error {
	for _, cb := range s.onChanged {
		if err := cb(ctx, userID, bearerToken); err != nil {
			return err
		}
	}
	return nil
}

func resetTokenID(u *user.User) string {
	sum := sha256.Sum256([]byte(u.PasswordHash + strconv.FormatInt(u.CreatedAt.Unix(), 10)))
	return hex.EncodeToString(sum[:])
}

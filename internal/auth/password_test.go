package auth_test

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/auth"
	"github.com/rahmatfauzi/modular-backend/internal/user"
)

func (m *mockUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserStore) UpdatePassword(_ context.Context, _ *gorm.DB, userID int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updatePasswordCalls++
	if u, ok := m.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

// mockMailer records reset mails instead of sending them.
type mockMailer struct {
	sent []struct{ to, token string }
}

func (m *mockMailer) SendPasswordReset(_ context.Context, to, token string) error {
	m.sent = append(m.sent, struct{ to, token string }{to, token})
	return nil
}

var _ = Describe("PasswordService", func() {
	var (
		ctx    context.Context
		db     *gorm.DB
		store  *mockUserStore
		mailer *mockMailer
		svc    *auth.PasswordService
		alice  *user.User
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		alice = &user.User{
			ID:           1,
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: mustHash("correct horse"),
			IsActive:     true,
			CreatedAt:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		}
		store = newMockUserStore(alice)
		mailer = &mockMailer{}
		svc = auth.NewPasswordService(db, store, mailer, testSecret, time.Hour, bcrypt.MinCost, nil)
	})

	Describe("ChangePassword", func() {
		It("rejects a wrong current password without touching the store", func() {
			appErr := svc.ChangePassword(ctx, alice, "wrong", "new password!", "")
			Expect(appErr).NotTo(BeNil())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))

			fields := appErr.Fields()
			Expect(fields).To(HaveLen(1))
			Expect(fields[0].Property).To(Equal("currentPassword"))
			Expect(fields[0].Constraints).To(HaveKey("passwordMatch"))

			Expect(store.updatePasswordCalls).To(BeZero())
		})

		It("writes the new hash when the current password matches", func() {
			appErr := svc.ChangePassword(ctx, alice, "correct horse", "new password!", "")
			Expect(appErr).To(BeNil())
			Expect(store.updatePasswordCalls).To(Equal(1))

			Expect(bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte("new password!"))).To(Succeed())
		})

		It("runs registered callbacks with the request's bearer token", func() {
			var gotUserID int64
			var gotToken string
			svc.OnPasswordChanged(func(_ context.Context, userID int64, bearerToken string) error {
				gotUserID = userID
				gotToken = bearerToken
				return nil
			})

			appErr := svc.ChangePassword(ctx, alice, "correct horse", "new password!", "the-bearer")
			Expect(appErr).To(BeNil())
			Expect(gotUserID).To(Equal(alice.ID))
			Expect(gotToken).To(Equal("the-bearer"))
		})

		It("fails the whole change when a callback fails", func() {
			svc.OnPasswordChanged(func(context.Context, int64, string) error {
				return internal.ErrDenylistNotConfigured
			})

			appErr := svc.ChangePassword(ctx, alice, "correct horse", "new password!", "the-bearer")
			Expect(appErr).NotTo(BeNil())
			Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("ForgotPassword", func() {
		It("succeeds silently for an unknown email", func() {
			appErr := svc.ForgotPassword(ctx, "nobody@example.com")
			Expect(appErr).To(BeNil())
			Expect(mailer.sent).To(BeEmpty())
		})

		It("reports an inactive account and sends nothing", func() {
			alice.IsActive = false

			appErr := svc.ForgotPassword(ctx, alice.Email)
			Expect(appErr).NotTo(BeNil())

			fields := appErr.Fields()
			Expect(fields).To(HaveLen(1))
			Expect(fields[0].Property).To(Equal("email"))
			Expect(fields[0].Constraints).To(HaveKey("emailActive"))

			Expect(mailer.sent).To(BeEmpty())
		})

		It("mails a token that validates back to the account", func() {
			appErr := svc.ForgotPassword(ctx, alice.Email)
			Expect(appErr).To(BeNil())
			Expect(mailer.sent).To(HaveLen(1))
			Expect(mailer.sent[0].to).To(Equal(alice.Email))

			u, appErr := svc.ValidateResetToken(ctx, mailer.sent[0].token)
			Expect(appErr).To(BeNil())
			Expect(u.ID).To(Equal(alice.ID))
		})
	})

	Describe("ResetPassword", func() {
		It("consumes the token: the first reset succeeds, a replay fails", func() {
			token, appErr := svc.GenerateResetToken(alice)
			Expect(appErr).To(BeNil())

			Expect(svc.ResetPassword(ctx, token, "brand new password")).To(BeNil())
			Expect(bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte("brand new password"))).To(Succeed())

			replayErr := svc.ResetPassword(ctx, token, "another password")
			Expect(replayErr).To(Equal(internal.ErrResetTokenInvalid))
		})

		It("invalidates outstanding tokens when the password changes by other means", func() {
			token, _ := svc.GenerateResetToken(alice)

			Expect(svc.ChangePassword(ctx, alice, "correct horse", "changed elsewhere", "")).To(BeNil())

			_, appErr := svc.ValidateResetToken(ctx, token)
			Expect(appErr).To(Equal(internal.ErrResetTokenInvalid))
		})

		It("runs registered callbacks without a bearer token", func() {
			var gotToken string
			called := false
			svc.OnPasswordChanged(func(_ context.Context, _ int64, bearerToken string) error {
				called = true
				gotToken = bearerToken
				return nil
			})

			token, _ := svc.GenerateResetToken(alice)
			Expect(svc.ResetPassword(ctx, token, "brand new password")).To(BeNil())
			Expect(called).To(BeTrue())
			Expect(gotToken).To(BeEmpty())
		})
	})

	Describe("ValidateResetToken", func() {
		It("rejects garbage", func() {
			_, appErr := svc.ValidateResetToken(ctx, "garbage")
			Expect(appErr).To(Equal(internal.ErrResetTokenInvalid))
		})

		It("rejects an expired token", func() {
			expired := auth.NewPasswordService(db, store, mailer, testSecret, -time.Minute, bcrypt.MinCost, nil)
			token, _ := expired.GenerateResetToken(alice)

			_, appErr := svc.ValidateResetToken(ctx, token)
			Expect(appErr).To(Equal(internal.ErrResetTokenInvalid))
		})

		It("rejects a token whose account has been deactivated", func() {
			token, _ := svc.GenerateResetToken(alice)
			alice.IsActive = false

			_, appErr := svc.ValidateResetToken(ctx, token)
			Expect(appErr).To(Equal(internal.ErrResetTokenInvalid))
		})

		It("rejects one user's jti presented under another subject", func() {
			bob := &user.User{
				ID:           2,
				Username:     "bob",
				Email:        "bob@example.com",
				PasswordHash: mustHash("another password"),
				IsActive:     true,
				CreatedAt:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
			}
			store.users[bob.ID] = bob

			aliceToken, _ := svc.GenerateResetToken(alice)
			claims := &jwt.RegisteredClaims{}
			_, _, err := jwt.NewParser().ParseUnverified(aliceToken, claims)
			Expect(err).NotTo(HaveOccurred())

			forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
				ID:        claims.ID,
				Subject:   strconv.FormatInt(bob.ID, 10),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})
			signed, err := forged.SignedString([]byte(testSecret))
			Expect(err).NotTo(HaveOccurred())

			_, appErr := svc.ValidateResetToken(ctx, signed)
			Expect(appErr).To(Equal(internal.ErrResetTokenInvalid))
		})

		It("rejects a forged jti even with a valid signature", func() {
			forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
				ID:        "0000000000000000000000000000000000000000000000000000000000000000",
				Subject:   strconv.FormatInt(alice.ID, 10),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})
			signed, err := forged.SignedString([]byte(testSecret))
			Expect(err).NotTo(HaveOccurred())

			_, appErr := svc.ValidateResetToken(ctx, signed)
			Expect(appErr).To(Equal(internal.ErrResetTokenInvalid))
		})
	})
})

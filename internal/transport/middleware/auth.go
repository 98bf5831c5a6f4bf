package middleware

import (
	"net/http"
	"strings"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/auth"
	"github.com/rahmatfauzi/modular-backend/internal/transport"
	"github.com/rahmatfauzi/modular-backend/internal/user"
	"github.com/rahmatfauzi/modular-backend/pkg/logger"
)

// Authenticator resolves the bearer token into a user and stores both on the
// request context. Requests without a valid token pass through anonymously;
// handlers that need an authenticated caller reject them individually, so
// public and protected routes can share the same router subtree.
func Authenticator(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, appErr := tokens.Authenticate(r.Context(), raw)
			if appErr != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := user.NewContext(r.Context(), u)
			ctx = internal.ContextWithUserID(ctx, u.ID)
			ctx = auth.ContextWithToken(ctx, raw)
			ctx = logger.With(ctx, "user_id", u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that did not authenticate.
func RequireUser(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user.FromContext(r.Context()) == nil {
				base.WriteAppError(w, internal.ErrAccessTokenInvalid)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

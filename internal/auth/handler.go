package auth

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/core/validation"
	"github.com/rahmatfauzi/modular-backend/internal/transport"
	"github.com/rahmatfauzi/modular-backend/internal/user"
)

// Handler exposes the authentication endpoints. Every operation, including
// the read-only token validation, answers 201 on success.
type Handler struct {
	*transport.BaseHandler
	tokens    *TokenService
	passwords *PasswordService
	validate  *validation.Validator
}

func NewHandler(base *transport.BaseHandler, tokens *TokenService, passwords *PasswordService, validate *validation.Validator) *Handler {
	return &Handler{
		BaseHandler: base,
		tokens:      tokens,
		passwords:   passwords,
		validate:    validate,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/password/change", h.ChangePassword)
	r.Post("/password/forgot", h.ForgotPassword)
	r.Post("/password/reset", h.ResetPassword)
	r.Post("/password/reset/validate", h.ValidateResetToken)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if appErr := h.validate.Struct(&dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	token, appErr := h.tokens.GenerateAccessToken(r.Context(), dto.Username, dto.Password)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, TokenOutput{AccessToken: token})
}

// Logout revokes the presented bearer token. Without a valid token there is
// nothing to revoke, so the response mirrors any other invalid-token failure.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := TokenFromContext(r.Context())
	if raw == "" {
		raw = h.ExtractTokenFromHeader(r)
	}
	if raw == "" {
		h.WriteAppError(w, internal.ErrAccessTokenInvalid)
		return
	}

	if appErr := h.tokens.RevokeAccessToken(r.Context(), raw); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, struct{}{})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := user.FromContext(r.Context())
	if actor == nil {
		h.WriteAppError(w, internal.ErrAccessTokenInvalid)
		return
	}

	var dto ChangePasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if appErr := h.validate.Struct(&dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	bearer := TokenFromContext(r.Context())
	if appErr := h.passwords.ChangePassword(r.Context(), actor, dto.CurrentPassword, dto.NewPassword, bearer); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, struct{}{})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto ForgotPasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if appErr := h.validate.Struct(&dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if appErr := h.passwords.ForgotPassword(r.Context(), dto.Email); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, struct{}{})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if appErr := h.validate.Struct(&dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if appErr := h.passwords.ResetPassword(r.Context(), dto.ResetPasswordToken, dto.NewPassword); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, struct{}{})
}

func (h *Handler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	var dto ValidateResetTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if appErr := h.validate.Struct(&dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if _, appErr := h.passwords.ValidateResetToken(r.Context(), dto.ResetPasswordToken); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, struct{}{})
}

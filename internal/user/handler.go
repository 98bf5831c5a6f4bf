package user

import (
	"net/http"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler(base *transport.BaseHandler) *Handler {
	return &Handler{BaseHandler: base}
}

// GetCurrentUser returns the authenticated account's projection.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor := FromContext(r.Context())
	if actor == nil {
		h.WriteAppError(w, internal.ErrAccessTokenInvalid)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToOutput(actor))
}

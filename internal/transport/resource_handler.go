package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/core/crud"
)

// ResourceHandler exposes a crud.Service as a standard REST resource:
//
//	GET    /        list (page/limit/offset/search/sortBy/where params)
//	POST   /        create
//	GET    /{id}    retrieve
//	PUT    /{id}    full update
//	PATCH  /{id}    partial update
//	DELETE /{id}    destroy
type ResourceHandler[E any, O any] struct {
	*BaseHandler
	Service *crud.Service[E, O]

	// DTO factories so each request decodes into a fresh payload value.
	NewCreateDTO func() interface{}
	NewUpdateDTO func() interface{}
}

func NewResourceHandler[E any, O any](base *BaseHandler, svc *crud.Service[E, O], newCreate, newUpdate func() interface{}) *ResourceHandler[E, O] {
	return &ResourceHandler[E, O]{
		BaseHandler:  base,
		Service:      svc,
		NewCreateDTO: newCreate,
		NewUpdateDTO: newUpdate,
	}
}

func (h *ResourceHandler[E, O]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Retrieve)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.PartialUpdate)
	r.Delete("/{id}", h.Destroy)
}

func (h *ResourceHandler[E, O]) input(r *http.Request) crud.Input {
	return crud.Input{
		Params: r.URL.Query(),
		Path:   r.URL.RequestURI(),
	}
}

func (h *ResourceHandler[E, O]) idFromRequest(r *http.Request) (int64, *internal.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, internal.NewNotFound()
	}
	return id, nil
}

func (h *ResourceHandler[E, O]) List(w http.ResponseWriter, r *http.Request) {
	page, appErr := h.Service.List(r.Context(), h.input(r))
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *ResourceHandler[E, O]) Retrieve(w http.ResponseWriter, r *http.Request) {
	in := h.input(r)
	id, appErr := h.idFromRequest(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	in.ID = id

	out, appErr := h.Service.Retrieve(r.Context(), in)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler[E, O]) Create(w http.ResponseWriter, r *http.Request) {
	in := h.input(r)
	dto := h.NewCreateDTO()
	if appErr := h.DecodeJSON(r, dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	in.Data = dto

	out, appErr := h.Service.Create(r.Context(), in)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusCreated, out)
}

func (h *ResourceHandler[E, O]) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *ResourceHandler[E, O]) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *ResourceHandler[E, O]) update(w http.ResponseWriter, r *http.Request, partial bool) {
	in := h.input(r)
	id, appErr := h.idFromRequest(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	in.ID = id

	dto := h.NewUpdateDTO()
	if appErr := h.DecodeJSON(r, dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	in.Data = dto

	out, appErr := h.Service.Update(r.Context(), in, partial)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *ResourceHandler[E, O]) Destroy(w http.ResponseWriter, r *http.Request) {
	in := h.input(r)
	id, appErr := h.idFromRequest(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	in.ID = id

	if appErr := h.Service.Destroy(r.Context(), in); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

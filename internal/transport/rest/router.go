package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/rahmatfauzi/modular-backend/internal/auth"
	"github.com/rahmatfauzi/modular-backend/internal/note"
	"github.com/rahmatfauzi/modular-backend/internal/transport"
	"github.com/rahmatfauzi/modular-backend/internal/transport/middleware"
	"github.com/rahmatfauzi/modular-backend/internal/transport/swagger"
	"github.com/rahmatfauzi/modular-backend/internal/user"
)

// RegisterAllRoutes mounts the whole HTTP surface on the router: auth, the
// CRUD resources, health and the OpenAPI artifacts.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	base *transport.BaseHandler,
	tokens *auth.TokenService,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	userResource *transport.ResourceHandler[user.User, user.UserOutput],
	noteResource *transport.ResourceHandler[note.Note, note.NoteOutput],
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Recovery(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		// every API request may carry a bearer token; requests without one
		// pass through anonymously and are rejected per-route
		r.Use(middleware.Authenticator(tokens))

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", authHandler.Routes)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireUser(base))

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", userHandler.GetCurrentUser)
				userResource.Routes(ur)
			})
			pr.Route("/notes", noteResource.Routes)
		})
	})
}

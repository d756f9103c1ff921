package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tkoehler/objektverwaltung/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the Objektverwaltung API.
//
// Login and signup are public. Everything else sits behind the bearer-token
// middleware, which resolves the token to a user once per request. Accounts
// still on a temporary password may only reach the auth endpoints until the
// password is changed.
func NewRouter(
	authHandler *AuthHandler,
	usersHandler *UsersHandler,
	objectsHandler *ObjectsHandler,
	validator middleware.SessionValidator,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/signup", authHandler.Signup)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(validator))

			// Self-service auth endpoints stay reachable with a temporary
			// password, so provisioned/reset accounts can complete the change.
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/password", authHandler.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePasswordChanged)

				r.Put("/auth/profile", authHandler.UpdateProfile)

				r.Get("/users", usersHandler.List)
				r.Post("/users", usersHandler.Create)
				r.Post("/users/{id}/reset", usersHandler.ResetPassword)
				r.Delete("/users/{id}", usersHandler.Delete)

				r.Get("/objects", objectsHandler.List)
				r.Post("/objects", objectsHandler.Create)
				r.Get("/objects/{id}", objectsHandler.Get)
				r.Put("/objects/{id}", objectsHandler.Update)
				r.Put("/objects/{id}/status", objectsHandler.UpdateStatus)
				r.Put("/objects/{id}/assignees", objectsHandler.Assign)
				r.Get("/objects/{id}/export", objectsHandler.Export)

				r.Post("/objects/{id}/images/url", objectsHandler.CreateUploadURL)
				r.Post("/objects/{id}/images", objectsHandler.AttachImage)
				r.Get("/objects/{id}/images", objectsHandler.ListImages)
				r.Delete("/images/{id}", objectsHandler.DeleteImage)
			})
		})
	})

	return r
}

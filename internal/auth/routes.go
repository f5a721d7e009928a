package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
)

// SetupRoutes mounts the auth endpoints. loginLimiter may be nil.
func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher, loginLimiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if loginLimiter != nil {
			r.Use(loginLimiter.Middleware)
		}
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(fetcher))
		r.Post("/logout", h.Logout)
		r.Post("/refresh", h.Refresh)
		r.Get("/me", h.Me)
		r.Post("/password", h.UpdatePassword)
	})

	return r
}

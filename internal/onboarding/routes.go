package onboarding

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
)

func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))
	r.Get("/", h.Get)
	r.Put("/step", h.SaveStep)
	r.Post("/complete", h.Complete)
	return r
}

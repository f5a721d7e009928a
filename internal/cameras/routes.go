package cameras

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
)

func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Get("/{camera_id}", h.Get)
	r.Get("/{camera_id}/health", h.Health)
	r.Get("/{camera_id}/roi", h.GetROI)
	r.Get("/{camera_id}/roi/zones", h.ZonesAt)
	r.Put("/{camera_id}/roi", h.SaveROI)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RoleMiddleware("owner", "admin"))
		r.Post("/", h.Create)
		r.Patch("/{camera_id}", h.Update)
		r.Delete("/{camera_id}", h.Delete)
	})

	return r
}

// StoreRoutes hangs the per-store camera listing under /stores/{store_id}.
func StoreRoutes(h *Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/{store_id}/cameras", h.ListByStore)
	}
}

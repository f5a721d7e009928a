package stores

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
)

// SetupRoutes mounts store CRUD. extra lets sibling modules hang
// store-scoped routes (cameras, employees) under /stores/{store_id}.
func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher, extra ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Get("/", h.List)
	r.Get("/{store_id}", h.Get)
	for _, mount := range extra {
		mount(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RoleMiddleware("owner", "admin"))
		r.Post("/", h.Create)
		r.Patch("/{store_id}", h.Update)
		r.Delete("/{store_id}", h.Delete)
	})

	return r
}

package employees

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
)

// SetupRoutes serves /employees/{employee_id}.
func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))
	r.With(middleware.RoleMiddleware("owner", "admin")).Delete("/{employee_id}", h.Delete)
	return r
}

// StoreRoutes hangs the roster endpoints under /stores/{store_id}.
func StoreRoutes(h *Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/{store_id}/employees", h.List)
		r.With(middleware.RoleMiddleware("owner", "admin")).Post("/{store_id}/employees/bulk", h.BulkCreate)
	}
}

package alerts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
)

func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Get("/", h.List)
	r.Get("/stream", h.Stream)
	r.Post("/{alert_id}/ack", h.Acknowledge)
	r.Post("/{alert_id}/resolve", h.Resolve)

	return r
}

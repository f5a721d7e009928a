package webhooks

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/db"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Public routes, authenticated by signature
	r.Post("/edge/health", h.EdgeHealth)

	return r
}

func Init() {
	if err := db.EnsureSchema(db.DB, "console"); err != nil {
		log.Fatal("Failed to ensure schema console: ", err)
	}
	if err := db.DB.AutoMigrate(&Delivery{}); err != nil {
		log.Fatal("Failed to auto-migrate edge deliveries: ", err)
	}
	log.Println("[webhooks] module initialized")
}

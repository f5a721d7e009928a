// Package demo stores requests from the public "book a demo" form.
package demo

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/client/roster"
	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/utils"
)

type Request struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;index" json:"email"`
	Company   string    `gorm:"not null" json:"company"`
	Stores    int       `json:"stores"`
	Message   string    `json:"message,omitempty"`
	SessionID string    `gorm:"index" json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Request) TableName() string { return "console.demo_requests" }

type Repository interface {
	Create(r *Request) error
}

type gormRepo struct{}

func DefaultRepository() Repository { return gormRepo{} }

func (gormRepo) Create(r *Request) error { return db.DB.Create(r).Error }

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler { return &Handler{repo: repo} }

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Company = strings.TrimSpace(req.Company)
	req.Message = strings.TrimSpace(req.Message)

	switch {
	case req.Name == "":
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "name is required")
		return
	case !roster.ValidateEmail(req.Email):
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "a valid email is required")
		return
	case req.Company == "":
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "company is required")
		return
	case req.Stores < 0:
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "stores cannot be negative")
		return
	case len(req.Message) > 4000:
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "message is too long")
		return
	}

	req.ID = utils.GenerateUUID()
	if err := h.repo.Create(&req); err != nil {
		http.Error(w, "Failed to save demo request: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("[demo] request from %s (%d stores)", req.Company, req.Stores)
	utils.WriteJSON(w, http.StatusCreated, req)
}

// SetupRoutes is public; limiter may be nil.
func SetupRoutes(h *Handler, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.Middleware)
	}
	r.Post("/requests", h.Create)
	return r
}

func Init() {
	if err := db.EnsureSchema(db.DB, "console"); err != nil {
		log.Fatal("Failed to ensure schema console: ", err)
	}
	if err := db.DB.AutoMigrate(&Request{}); err != nil {
		log.Fatal("Failed to auto-migrate demo requests: ", err)
	}
	log.Println("[demo] module initialized")
}

package journey

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/utils"
)

const (
	MaxEventsPerRequest = 100
	maxNameLength       = 100
	// Client clocks ahead of ours by more than this are clamped to receipt time.
	maxClockSkew = 5 * time.Minute
)

type Handler struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

// NewHandler accepts a nil publisher when forwarding is disabled.
func NewHandler(repo Repository, publisher Publisher) *Handler {
	return &Handler{repo: repo, publisher: publisher, now: time.Now}
}

type trackResponse struct {
	Accepted int `json:"accepted"`
}

func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 512<<10)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid payload")
		return
	}
	if len(req.Events) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "no events")
		return
	}
	if len(req.Events) > MaxEventsPerRequest {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation,
			fmt.Sprintf("at most %d events per request", MaxEventsPerRequest))
		return
	}

	var accountID, userID *string
	if id, ok := utils.GetAccountIDFromContext(r.Context()); ok {
		accountID = &id
	}
	if id, ok := utils.GetUserIDFromContext(r.Context()); ok {
		userID = &id
	}

	now := h.now().UTC()
	events := make([]Event, 0, len(req.Events))
	for i, in := range req.Events {
		name := strings.TrimSpace(in.Name)
		if name == "" || len(name) > maxNameLength {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation,
				fmt.Sprintf("event %d: name must be 1-%d characters", i+1, maxNameLength))
			return
		}
		if strings.TrimSpace(in.SessionID) == "" {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation,
				fmt.Sprintf("event %d: session_id is required", i+1))
			return
		}
		props, err := db.MarshalJSONB(in.Properties)
		if err != nil || in.Properties == nil {
			props = db.JSONB("{}")
		}
		occurred := in.OccurredAt.UTC()
		if in.OccurredAt.IsZero() || occurred.After(now.Add(maxClockSkew)) {
			occurred = now
		}
		events = append(events, Event{
			ID:         utils.GenerateUUID(),
			AccountID:  accountID,
			UserID:     userID,
			SessionID:  in.SessionID,
			Name:       name,
			Properties: props,
			OccurredAt: occurred,
			ReceivedAt: now,
		})
	}

	if err := h.repo.CreateBatch(events); err != nil {
		http.Error(w, "Failed to store events: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if h.publisher != nil {
		if err := h.publisher.Publish(events); err != nil {
			log.Printf("[journey] forward %d events: %v", len(events), err)
		}
	}
	utils.WriteJSON(w, http.StatusAccepted, trackResponse{Accepted: len(events)})
}

// SetupRoutes accepts anonymous visitors; a valid bearer token ties events
// to the account.
func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.OptionalSession(fetcher))
	r.Post("/events", h.Track)
	return r
}

func Init() {
	if err := db.EnsureSchema(db.DB, "console"); err != nil {
		log.Fatal("Failed to ensure schema console: ", err)
	}
	if err := db.DB.AutoMigrate(&Event{}); err != nil {
		log.Fatal("Failed to auto-migrate journey events: ", err)
	}
	log.Println("[journey] module initialized")
}

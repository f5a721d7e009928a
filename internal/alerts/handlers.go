package alerts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/utils"
)

type Handler struct {
	svc  *Service
	repo Repository
	hub  *Hub
}

func NewHandler(svc *Service, repo Repository, hub *Hub) *Handler {
	return &Handler{svc: svc, repo: repo, hub: hub}
}

func account(r *http.Request) string {
	id, _ := utils.GetAccountIDFromContext(r.Context())
	return id
}

// List returns alerts newest first, filtered by ?store_id=&status=&severity=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		StoreID:  q.Get("store_id"),
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Limit:    200,
	}
	if f.Status != "" && !validStatus(f.Status) {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "unknown status")
		return
	}
	if f.Severity != "" && !validSeverity(f.Severity) {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "unknown severity")
		return
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid limit")
			return
		}
		f.Limit = min(n, 1000)
	}

	list, err := h.repo.List(account(r), f)
	if err != nil {
		http.Error(w, "Failed to fetch alerts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Alert{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	a, err := h.svc.Acknowledge(account(r), chi.URLParam(r, "alert_id"), userID)
	respond(w, a, err)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Resolve(account(r), chi.URLParam(r, "alert_id"))
	respond(w, a, err)
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	h.hub.Serve(w, r, account(r))
}

func respond(w http.ResponseWriter, a Alert, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Alert not found", http.StatusNotFound)
	case err != nil:
		http.Error(w, "Failed to update alert: "+err.Error(), http.StatusInternalServerError)
	default:
		utils.WriteJSON(w, http.StatusOK, a)
	}
}

package employees

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/client/roster"
	"github.com/storesight/console/internal/utils"
)

// MaxBatch caps the rows accepted by one bulk import.
const MaxBatch = 500

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func account(r *http.Request) string {
	id, _ := utils.GetAccountIDFromContext(r.Context())
	return id
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(account(r), chi.URLParam(r, "store_id"))
	if err != nil {
		http.Error(w, "Failed to fetch employees: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Employee{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

type bulkRequest struct {
	Employees []roster.Draft `json:"employees"`
}

// BulkCreate imports a roster. Rows go through the same shaping as the
// console applies before sending, then rows whose e-mail is already on file
// for the store are skipped.
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	acct := account(r)
	storeID := chi.URLParam(r, "store_id")

	var req bulkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid payload")
		return
	}
	if len(req.Employees) > MaxBatch {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation,
			fmt.Sprintf("at most %d employees per import", MaxBatch))
		return
	}

	exists, err := h.repo.StoreExists(acct, storeID)
	if err != nil {
		http.Error(w, "Failed to check store", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "Store not found", http.StatusNotFound)
		return
	}

	entries := roster.BuildPayload(req.Employees)
	for i, e := range entries {
		if e.Email != "" && !roster.ValidateEmail(e.Email) {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation,
				fmt.Sprintf("row %d: invalid email %q", i+1, e.Email))
			return
		}
	}

	onFile, err := h.repo.EmailKeys(storeID)
	if err != nil {
		http.Error(w, "Failed to load employees", http.StatusInternalServerError)
		return
	}

	result := BulkResult{Skipped: len(req.Employees) - len(entries)}
	batch := make([]Employee, 0, len(entries))
	for _, e := range entries {
		key := ""
		if e.Email != "" {
			key = roster.EmailKey(e.Email)
			if onFile[key] {
				result.Skipped++
				continue
			}
		}
		name := e.Name
		if name == "" {
			name = strings.SplitN(e.Email, "@", 2)[0]
		}
		if name == "" {
			result.Skipped++
			continue
		}
		batch = append(batch, Employee{
			ID:        utils.GenerateUUID(),
			AccountID: acct,
			StoreID:   storeID,
			Name:      name,
			Email:     e.Email,
			EmailKey:  key,
			Role:      string(e.Role),
		})
	}

	if err := h.repo.CreateBatch(batch); err != nil {
		http.Error(w, "Failed to import employees: "+err.Error(), http.StatusInternalServerError)
		return
	}
	result.Created = len(batch)
	utils.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.repo.Delete(account(r), chi.URLParam(r, "employee_id"))
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Employee not found", http.StatusNotFound)
	case err != nil:
		http.Error(w, "Failed to delete employee: "+err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

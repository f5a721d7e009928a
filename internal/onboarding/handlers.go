package onboarding

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/utils"
)

type Handler struct {
	repo Repository
	now  func() time.Time
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

func (h *Handler) load(accountID string) (Progress, error) {
	p, err := h.repo.Get(accountID)
	if errors.Is(err, ErrNotFound) {
		return fresh(accountID), nil
	}
	return p, err
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	acct, _ := utils.GetAccountIDFromContext(r.Context())
	p, err := h.load(acct)
	if err != nil {
		http.Error(w, "Failed to load onboarding: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

// SaveStep stores the answers for one step under answers[step], marks the
// step completed and advances current_step to the next open step.
func (h *Handler) SaveStep(w http.ResponseWriter, r *http.Request) {
	acct, _ := utils.GetAccountIDFromContext(r.Context())

	var req StepRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 256<<10)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid payload")
		return
	}
	if !knownStep(req.Step) {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "unknown step "+req.Step)
		return
	}

	p, err := h.load(acct)
	if err != nil {
		http.Error(w, "Failed to load onboarding: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if p.Completed {
		utils.WriteError(w, http.StatusConflict, utils.CodeValidation, "onboarding already completed")
		return
	}

	answers := map[string]any{}
	if err := p.Answers.Decode(&answers); err != nil {
		http.Error(w, "Stored answers are corrupt", http.StatusInternalServerError)
		return
	}
	if req.Answers == nil {
		req.Answers = map[string]any{}
	}
	answers[req.Step] = req.Answers
	if p.Answers, err = db.MarshalJSONB(answers); err != nil {
		http.Error(w, "Failed to encode answers", http.StatusInternalServerError)
		return
	}

	seen := false
	for _, s := range p.CompletedSteps {
		if s == req.Step {
			seen = true
			break
		}
	}
	if !seen {
		p.CompletedSteps = append(p.CompletedSteps, req.Step)
	}
	p.CurrentStep = p.nextStep()
	p.UpdatedAt = h.now()

	if err := h.repo.Save(&p); err != nil {
		http.Error(w, "Failed to save onboarding: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

// Complete closes the wizard. Steps left open are allowed; the wizard lets
// owners skip ahead.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	acct, _ := utils.GetAccountIDFromContext(r.Context())
	p, err := h.load(acct)
	if err != nil {
		http.Error(w, "Failed to load onboarding: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !p.Completed {
		now := h.now()
		p.Completed = true
		p.CompletedAt = &now
		p.UpdatedAt = now
		if err := h.repo.Save(&p); err != nil {
			http.Error(w, "Failed to save onboarding: "+err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("[onboarding] account %s completed onboarding (%d/%d steps)", acct, len(p.CompletedSteps), len(Steps))
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

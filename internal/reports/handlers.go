package reports

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/utils"
)

// AccountInfo is implemented by auth.AccountPlans.
type AccountInfo interface {
	PlanFor(accountID string) (string, error)
	TrialEndsAt(accountID string) (*time.Time, error)
}

type Handler struct {
	repo     Repository
	accounts AccountInfo
	now      func() time.Time
}

func NewHandler(repo Repository, accounts AccountInfo) *Handler {
	return &Handler{repo: repo, accounts: accounts, now: time.Now}
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	acct, _ := utils.GetAccountIDFromContext(r.Context())

	plan, err := h.accounts.PlanFor(acct)
	if err != nil {
		http.Error(w, "Couldn't find account", http.StatusNotFound)
		return
	}
	trial, err := h.accounts.TrialEndsAt(acct)
	if err != nil {
		http.Error(w, "Couldn't find account", http.StatusNotFound)
		return
	}
	counts, err := h.repo.Counts(acct)
	if err != nil {
		log.Printf("[reports] counts for %s: %v", acct, err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, build(counts, plan, trial, h.now()))
}

// SetupRoutes serves /me/report.
func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))
	r.Get("/report", h.Report)
	return r
}

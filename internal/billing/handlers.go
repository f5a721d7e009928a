package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/utils"
)

// PlanSource resolves the plan code of an account.
type PlanSource interface {
	PlanFor(accountID string) (string, error)
}

type Handler struct {
	plans PlanSource
}

func NewHandler(plans PlanSource) *Handler {
	return &Handler{plans: plans}
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, Catalogue)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	accountID, _ := utils.GetAccountIDFromContext(r.Context())
	code, err := h.plans.PlanFor(accountID)
	if err != nil {
		http.Error(w, "Couldn't find account", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, Lookup(code))
}

func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotImplemented, "not_implemented", "plan changes are handled by the billing portal")
}

func SetupRoutes(h *Handler, fetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()
	r.Get("/plans", h.ListPlans)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(fetcher))
		r.Get("/current", h.Current)
		r.With(middleware.RoleMiddleware("owner")).Post("/upgrade", h.Upgrade)
	})
	return r
}

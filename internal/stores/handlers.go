package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/billing"
	"github.com/storesight/console/internal/geocoding"
	"github.com/storesight/console/internal/utils"
)

// Geocoder resolves an address to coordinates. A nil Geocoder disables lookup.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, error)
}

type Handler struct {
	repo  Repository
	plans billing.PlanSource
	geo   Geocoder
}

func NewHandler(repo Repository, plans billing.PlanSource, geo Geocoder) *Handler {
	return &Handler{repo: repo, plans: plans, geo: geo}
}

func account(r *http.Request) string {
	id, _ := utils.GetAccountIDFromContext(r.Context())
	return id
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(account(r))
	if err != nil {
		http.Error(w, "Failed to fetch stores: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Store{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(account(r), chi.URLParam(r, "store_id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "name is required")
		return
	}
	if err := validTimezone(in.Timezone); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, err.Error())
		return
	}

	acct := account(r)
	code, err := h.plans.PlanFor(acct)
	if err != nil {
		http.Error(w, "Couldn't find account", http.StatusInternalServerError)
		return
	}
	n, err := h.repo.Count(acct)
	if err != nil {
		http.Error(w, "Failed to count stores", http.StatusInternalServerError)
		return
	}
	plan := billing.Lookup(code)
	if !plan.Allows(int(n) + 1) {
		utils.WriteError(w, http.StatusPaymentRequired, utils.CodePlanLimit,
			fmt.Sprintf("the %s plan allows up to %d stores", plan.Name, plan.MaxStores))
		return
	}

	s := Store{
		ID:        utils.GenerateUUID(),
		AccountID: acct,
		Name:      in.Name,
		Address:   strings.TrimSpace(in.Address),
		Timezone:  in.Timezone,
		Tags:      cleanTags(in.Tags),
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	h.locate(r.Context(), &s)

	if err := h.repo.Create(&s); err != nil {
		http.Error(w, "Failed to create store: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(account(r), chi.URLParam(r, "store_id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validTimezone(in.Timezone); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, err.Error())
		return
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		s.Name = name
	}
	if in.Timezone != "" {
		s.Timezone = in.Timezone
	}
	if in.Tags != nil {
		s.Tags = cleanTags(in.Tags)
	}
	if addr := strings.TrimSpace(in.Address); addr != "" && addr != s.Address {
		s.Address = addr
		s.Lat, s.Lng = nil, nil
		h.locate(r.Context(), &s)
	}

	if err := h.repo.Save(&s); err != nil {
		http.Error(w, "Failed to update store: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(account(r), chi.URLParam(r, "store_id")); err != nil {
		writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// locate fills in coordinates. Lookup failures never block the write.
func (h *Handler) locate(ctx context.Context, s *Store) {
	if h.geo == nil || s.Address == "" {
		return
	}
	res, err := h.geo.Geocode(ctx, s.Address)
	if err != nil {
		log.Printf("[stores] geocode %q: %v", s.Address, err)
		return
	}
	s.Lat, s.Lng = &res.Lat, &res.Lng
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Store not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to load store: "+err.Error(), http.StatusInternalServerError)
}

func validTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("unknown timezone %q", tz)
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

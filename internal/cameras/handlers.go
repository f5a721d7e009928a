package cameras

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/db"
	"github.com/storesight/console/internal/roi"
	"github.com/storesight/console/internal/utils"
)

type Handler struct {
	repo Repository
	now  func() time.Time
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

func account(r *http.Request) string {
	id, _ := utils.GetAccountIDFromContext(r.Context())
	return id
}

func (h *Handler) ListByStore(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListByStore(account(r), chi.URLParam(r, "store_id"))
	if err != nil {
		http.Error(w, "Failed to fetch cameras: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Camera{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.StoreID == "" {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "store_id and name are required")
		return
	}

	acct := account(r)
	exists, err := h.repo.StoreExists(acct, in.StoreID)
	if err != nil {
		http.Error(w, "Failed to check store", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "Store not found", http.StatusNotFound)
		return
	}

	c := Camera{
		ID:        utils.GenerateUUID(),
		AccountID: acct,
		StoreID:   in.StoreID,
		Name:      in.Name,
		StreamURL: strings.TrimSpace(in.StreamURL),
		Status:    StatusUnknown,
	}
	if err := h.repo.Create(&c); err != nil {
		http.Error(w, "Failed to create camera: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.StreamURL != "" {
		c.StreamURL = strings.TrimSpace(in.StreamURL)
	}
	if in.StoreID != "" && in.StoreID != c.StoreID {
		exists, err := h.repo.StoreExists(c.AccountID, in.StoreID)
		if err != nil || !exists {
			http.Error(w, "Store not found", http.StatusNotFound)
			return
		}
		c.StoreID = in.StoreID
	}
	if err := h.repo.Save(&c); err != nil {
		http.Error(w, "Failed to update camera: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(account(r), chi.URLParam(r, "camera_id")); err != nil {
		writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, Health{
		CameraID:     c.ID,
		Status:       c.Status,
		LastSeenAt:   c.LastSeenAt,
		AgentVersion: c.AgentVersion,
	})
}

// GetROI returns the stored zone configuration, or an empty draft at
// version 0 when nothing has been saved yet.
func (h *Handler) GetROI(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	cfg, err := h.config(c.ID)
	if err != nil {
		http.Error(w, "Failed to load ROI: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cfg)
}

// SaveROI replaces the whole zone collection. The request echoes the
// version it was based on; a stale version is rejected with 409.
func (h *Handler) SaveROI(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}

	var req roi.SaveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "invalid ROI payload")
		return
	}
	if req.Status == "" {
		req.Status = roi.StatusDraft
	}
	if err := req.Validate(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, err.Error())
		return
	}
	if req.Status == roi.StatusPublished && len(req.Zones) == 0 {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "cannot publish without zones")
		return
	}

	zones, err := db.MarshalJSONB(req.Zones)
	if err != nil {
		http.Error(w, "Failed to encode zones", http.StatusInternalServerError)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())
	rec := ROIRecord{
		CameraID:     c.ID,
		Status:       string(req.Status),
		Zones:        zones,
		CanvasWidth:  req.Canvas.Width,
		CanvasHeight: req.Canvas.Height,
		UpdatedBy:    userID,
		UpdatedAt:    h.now(),
	}

	switch err := h.repo.SaveROI(&rec, req.Version); {
	case errors.Is(err, ErrVersionConflict):
		utils.WriteError(w, http.StatusConflict, utils.CodeVersionConflict,
			"zones were changed elsewhere; reload before saving")
		return
	case err != nil:
		http.Error(w, "Failed to save ROI: "+err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("[cameras] roi %s saved v%d (%s, %d zones)", c.ID, rec.Version, rec.Status, len(req.Zones))
	utils.WriteJSON(w, http.StatusOK, roi.SaveResponse{Version: rec.Version, Status: req.Status})
}

// ZonesAt lists the names of the zones containing the normalized point
// ?x=&y=, for analytics tooling that maps detections onto zones.
func (h *Handler) ZonesAt(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeValidation, "x and y must be numbers")
		return
	}
	cfg, err := h.config(c.ID)
	if err != nil {
		http.Error(w, "Failed to load ROI: "+err.Error(), http.StatusInternalServerError)
		return
	}

	p := roi.Point{X: roi.Clamp01(x), Y: roi.Clamp01(y)}
	names := []string{}
	for _, z := range cfg.Zones {
		if z.Contains(p) {
			names = append(names, z.Name)
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"version": cfg.Version, "zones": names})
}

func (h *Handler) config(cameraID string) (roi.Config, error) {
	rec, err := h.repo.ROI(cameraID)
	if errors.Is(err, ErrNotFound) {
		return emptyConfig(cameraID), nil
	}
	if err != nil {
		return roi.Config{}, err
	}
	return rec.Config()
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Camera, bool) {
	c, err := h.repo.Get(account(r), chi.URLParam(r, "camera_id"))
	if err != nil {
		writeLookupError(w, err)
		return Camera{}, false
	}
	return c, true
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Camera not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to load camera: "+err.Error(), http.StatusInternalServerError)
}

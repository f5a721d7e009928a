package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/storesight/console/internal/alerts"
	"github.com/storesight/console/internal/cameras"
)

const (
	SignatureHeader = "Edge-Signature"
	DeliveryHeader  = "Edge-Delivery-Id"
	// Reports stamped further than this from our clock are rejected.
	maxReportAge = 15 * time.Minute
)

type CameraHealth interface {
	SetHealth(id, status, agentVersion string, seenAt time.Time) (cameras.Camera, error)
}

type AlertRaiser interface {
	Raise(a alerts.Alert) (alerts.Alert, bool, error)
	ResolveOpen(cameraID, alertType string) (alerts.Alert, bool, error)
}

type Handler struct {
	secret     string
	cams       CameraHealth
	alerts     AlertRaiser
	deliveries DeliveryLog
	now        func() time.Time
}

func NewHandler(secret string, cams CameraHealth, raiser AlertRaiser, deliveries DeliveryLog) *Handler {
	return &Handler{secret: secret, cams: cams, alerts: raiser, deliveries: deliveries, now: time.Now}
}

// Sign returns the signature header value for a delivery.
func Sign(secret, deliveryID string, raw []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	mac.Write([]byte(deliveryID))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func verify(sig, deliveryID string, raw []byte, secret string) bool {
	if !strings.HasPrefix(sig, "sha256=") {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(Sign(secret, deliveryID, raw)))
}

func (h *Handler) EdgeHealth(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "payload too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}
	defer r.Body.Close()

	if h.secret == "" {
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}
	did := r.Header.Get(DeliveryHeader)
	if did == "" {
		http.Error(w, "missing delivery id", http.StatusBadRequest)
		return
	}
	if !verify(r.Header.Get(SignatureHeader), did, raw, h.secret) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var rep HealthReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	now := h.now()
	if rep.ReportedAt.IsZero() {
		rep.ReportedAt = now
	}
	if d := now.Sub(rep.ReportedAt); d > maxReportAge || d < -maxReportAge {
		http.Error(w, "stale report", http.StatusBadRequest)
		return
	}

	fresh, err := h.deliveries.Record(did, raw, now)
	if err != nil {
		http.Error(w, "db insert failed", http.StatusInternalServerError)
		return
	}
	if !fresh {
		writeResult(w, Result{Duplicate: true})
		return
	}

	res, err := h.apply(rep)
	if err != nil {
		// Forget the delivery so the agent's retry is applied, not acked as a duplicate.
		if ferr := h.deliveries.Forget(did); ferr != nil {
			log.Printf("[webhooks] forget delivery %s: %v", did, ferr)
		}
		log.Printf("[webhooks] edge %s not applied: %v", did, err)
		http.Error(w, "health update failed, retry later", http.StatusServiceUnavailable)
		return
	}
	log.Printf("[webhooks] edge %s: updated=%d skipped=%d opened=%d resolved=%d",
		did, res.Updated, res.Skipped, res.AlertsOpened, res.AlertsResolved)
	writeResult(w, res)
}

// apply updates each reported camera. Unknown cameras and bad statuses are
// counted as skipped so one bad entry does not drop the whole heartbeat.
// Store failures are returned; every step is safe to repeat on retry.
func (h *Handler) apply(rep HealthReport) (Result, error) {
	var (
		res      Result
		firstErr error
	)
	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, c := range rep.Cameras {
		if c.Status != cameras.StatusOnline && c.Status != cameras.StatusOffline {
			res.Skipped++
			continue
		}
		cam, err := h.cams.SetHealth(c.CameraID, c.Status, rep.AgentVersion, rep.ReportedAt)
		if errors.Is(err, cameras.ErrNotFound) {
			res.Skipped++
			continue
		}
		if err != nil {
			fail(fmt.Errorf("set health %s: %w", c.CameraID, err))
			continue
		}
		res.Updated++

		switch c.Status {
		case cameras.StatusOffline:
			camID := cam.ID
			_, created, err := h.alerts.Raise(alerts.Alert{
				AccountID: cam.AccountID,
				StoreID:   cam.StoreID,
				CameraID:  &camID,
				Type:      alerts.TypeCameraOffline,
				Severity:  alerts.SeverityCritical,
				Message:   offlineMessage(cam.Name, c.Detail),
			})
			if err != nil {
				fail(fmt.Errorf("raise offline alert %s: %w", cam.ID, err))
			} else if created {
				res.AlertsOpened++
			}
		case cameras.StatusOnline:
			_, resolved, err := h.alerts.ResolveOpen(cam.ID, alerts.TypeCameraOffline)
			if err != nil {
				fail(fmt.Errorf("resolve offline alert %s: %w", cam.ID, err))
			} else if resolved {
				res.AlertsResolved++
			}
		}
	}
	return res, firstErr
}

func offlineMessage(name, detail string) string {
	if detail == "" {
		return fmt.Sprintf("Camera %q is offline", name)
	}
	return fmt.Sprintf("Camera %q is offline: %s", name, detail)
}

func writeResult(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(res)
}

package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storesight/console/internal/utils"
)

type planMap map[string]string

func (p planMap) PlanFor(accountID string) (string, error) {
	code, ok := p[accountID]
	if !ok {
		return "", errors.New("no account")
	}
	return code, nil
}

func TestPlanAllows(t *testing.T) {
	starter := Lookup("starter")
	if !starter.Allows(3) || starter.Allows(4) {
		t.Errorf("starter limits wrong: %+v", starter)
	}
	if !Lookup("enterprise").Allows(1000) {
		t.Error("enterprise should be unlimited")
	}
	if Lookup("mystery").Code != "starter" {
		t.Error("unknown plan should fall back to starter")
	}
}

func TestCurrent(t *testing.T) {
	h := NewHandler(planMap{"acct-1": "growth"})
	req := httptest.NewRequest(http.MethodGet, "/current", nil)
	req = req.WithContext(utils.WithSession(req.Context(), utils.SessionData{UserID: "u", AccountID: "acct-1"}))
	rec := httptest.NewRecorder()
	h.Current(rec, req)

	var p Plan
	json.NewDecoder(rec.Body).Decode(&p)
	if rec.Code != http.StatusOK || p.Code != "growth" || p.MaxStores != 25 {
		t.Fatalf("current = %d %+v", rec.Code, p)
	}
}

func TestUpgradeNotImplemented(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(planMap{}).Upgrade(rec, httptest.NewRequest(http.MethodPost, "/upgrade", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}
}

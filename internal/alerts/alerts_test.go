package alerts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/storesight/console/internal/client/apiclient"
	"github.com/storesight/console/internal/client/services"
	"github.com/storesight/console/internal/utils"
	"go.uber.org/zap"
)

type memRepo struct {
	mu     sync.Mutex
	alerts map[string]Alert
}

func newMemRepo() *memRepo { return &memRepo{alerts: map[string]Alert{}} }

func (m *memRepo) List(accountID string, f Filter) ([]Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Alert
	for _, a := range m.alerts {
		if a.AccountID != accountID ||
			(f.StoreID != "" && a.StoreID != f.StoreID) ||
			(f.Status != "" && a.Status != f.Status) ||
			(f.Severity != "" && a.Severity != f.Severity) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) Get(accountID, id string) (Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok || a.AccountID != accountID {
		return Alert{}, ErrNotFound
	}
	return a, nil
}

func (m *memRepo) OpenFor(cameraID, alertType string) (Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.CameraID != nil && *a.CameraID == cameraID && a.Type == alertType && a.Status != StatusResolved {
			return a, nil
		}
	}
	return Alert{}, ErrNotFound
}

func (m *memRepo) Create(a *Alert) error { return m.Save(a) }

func (m *memRepo) Save(a *Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[a.ID] = *a
	return nil
}

type tokens map[string]utils.SessionData

func (t tokens) FindSessionByToken(tok string) (utils.SessionData, error) {
	s, ok := t[tok]
	if !ok {
		return utils.SessionData{}, errors.New("no session")
	}
	return s, nil
}

type endpoint struct{ base, token string }

func (e endpoint) BaseURL() string { return e.base }
func (e endpoint) Token() string   { return e.token }

func newTestServer(t *testing.T) (*httptest.Server, *Service, *Hub) {
	t.Helper()
	repo := newMemRepo()
	hub := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	svc := NewService(repo, hub)
	exp := time.Now().Add(time.Hour)
	fetcher := tokens{
		"a1": {UserID: "u1", AccountID: "acct-1", Role: "owner", ExpiresAt: exp},
		"a2": {UserID: "u2", AccountID: "acct-2", Role: "owner", ExpiresAt: exp},
	}
	srv := httptest.NewServer(SetupRoutes(NewHandler(svc, repo, hub), fetcher))
	t.Cleanup(srv.Close)
	return srv, svc, hub
}

func camOffline(account, camera string) Alert {
	return Alert{AccountID: account, StoreID: "s1", CameraID: &camera, Type: TypeCameraOffline, Severity: SeverityCritical}
}

func TestRaise_DedupesOpenCameraAlert(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	first, created, err := svc.Raise(camOffline("acct-1", "c1"))
	if err != nil || !created {
		t.Fatalf("first raise: %v created=%v", err, created)
	}
	again, created, err := svc.Raise(camOffline("acct-1", "c1"))
	if err != nil || created || again.ID != first.ID {
		t.Fatalf("second raise created a duplicate: %+v", again)
	}

	if _, ok, _ := svc.ResolveOpen("c1", TypeCameraOffline); !ok {
		t.Fatal("ResolveOpen found nothing")
	}
	_, created, _ = svc.Raise(camOffline("acct-1", "c1"))
	if !created {
		t.Fatal("new alert not opened after resolve")
	}
}

func TestRaise_RejectsUnknownSeverity(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	if _, _, err := svc.Raise(Alert{AccountID: "a", StoreID: "s", Type: "x", Severity: "apocalyptic"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestListAckResolveOverHTTP(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	ctx := context.Background()
	a, _, _ := svc.Raise(camOffline("acct-1", "c1"))
	svc.Raise(Alert{AccountID: "acct-1", StoreID: "s2", Type: "after_hours_motion", Severity: SeverityInfo})
	svc.Raise(camOffline("acct-2", "c9"))

	api := services.New(apiclient.New(srv.URL, staticToken("a1"))).Alerts

	all, err := api.List(ctx, services.AlertFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %d, %v", len(all), err)
	}
	crit, _ := api.List(ctx, services.AlertFilter{Severity: SeverityCritical})
	if len(crit) != 1 || crit[0].ID != a.ID {
		t.Fatalf("critical = %+v", crit)
	}
	if _, err := api.List(ctx, services.AlertFilter{Status: "snoozed"}); apiclient.KindOf(err) != apiclient.KindValidation {
		t.Fatalf("bad status filter: %v", err)
	}

	acked, err := api.Acknowledge(ctx, a.ID)
	if err != nil || acked.Status != StatusAcknowledged || acked.AcknowledgedAt == nil {
		t.Fatalf("ack = %+v, %v", acked, err)
	}
	resolved, err := api.Resolve(ctx, a.ID)
	if err != nil || resolved.Status != StatusResolved {
		t.Fatalf("resolve = %+v, %v", resolved, err)
	}

	other := services.New(apiclient.New(srv.URL, staticToken("a2"))).Alerts
	if _, err := other.Resolve(ctx, a.ID); err == nil {
		t.Fatal("other account resolved alert")
	}
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestStream_DeliversOnlyOwnAccount(t *testing.T) {
	srv, svc, hub := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan services.AlertEvent, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- services.WatchAlerts(ctx, endpoint{base: srv.URL, token: "a1"}, func(ev services.AlertEvent) {
			events <- ev
		})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("acct-1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	svc.Raise(camOffline("acct-2", "c9"))
	mine, _, _ := svc.Raise(camOffline("acct-1", "c1"))

	select {
	case ev := <-events:
		if ev.Type != "created" || ev.Alert.ID != mine.ID {
			t.Fatalf("event = %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("WatchAlerts: %v", err)
	}
}

func TestStream_RequiresToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	err := services.WatchAlerts(context.Background(), endpoint{base: srv.URL}, func(services.AlertEvent) {})
	if err == nil {
		t.Fatal("expected handshake failure")
	}
}

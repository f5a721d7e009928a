package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/storesight/console/internal/geocoding"
	"github.com/storesight/console/internal/utils"
)

type memRepo struct {
	mu     sync.Mutex
	stores map[string]Store
}

func newMemRepo() *memRepo { return &memRepo{stores: map[string]Store{}} }

func (m *memRepo) List(accountID string) ([]Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Store
	for _, s := range m.stores {
		if s.AccountID == accountID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memRepo) Get(accountID, id string) (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[id]
	if !ok || s.AccountID != accountID {
		return Store{}, ErrNotFound
	}
	return s, nil
}

func (m *memRepo) Count(accountID string) (int64, error) {
	l, _ := m.List(accountID)
	return int64(len(l)), nil
}

func (m *memRepo) Create(s *Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[s.ID] = *s
	return nil
}

func (m *memRepo) Save(s *Store) error { return m.Create(s) }

func (m *memRepo) Delete(accountID, id string) error {
	if _, err := m.Get(accountID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, id)
	return nil
}

type planMap map[string]string

func (p planMap) PlanFor(id string) (string, error) { return p[id], nil }

type tokens map[string]utils.SessionData

func (t tokens) FindSessionByToken(tok string) (utils.SessionData, error) {
	s, ok := t[tok]
	if !ok {
		return utils.SessionData{}, errors.New("no session")
	}
	return s, nil
}

type fakeGeo struct{ calls int }

func (f *fakeGeo) Geocode(ctx context.Context, addr string) (*geocoding.Result, error) {
	f.calls++
	return &geocoding.Result{Lat: 1.5, Lng: 2.5}, nil
}

func newServer(t *testing.T, plan string, geo Geocoder) (*httptest.Server, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	exp := time.Now().Add(time.Hour)
	fetcher := tokens{
		"owner":  {UserID: "u1", AccountID: "a1", Role: "owner", ExpiresAt: exp},
		"member": {UserID: "u2", AccountID: "a1", Role: "member", ExpiresAt: exp},
		"other":  {UserID: "u3", AccountID: "a2", Role: "owner", ExpiresAt: exp},
	}
	h := NewHandler(repo, planMap{"a1": plan, "a2": "starter"}, geo)
	srv := httptest.NewServer(SetupRoutes(h, fetcher))
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, rd)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func TestCreate_StarterPlanLimit(t *testing.T) {
	srv, _ := newServer(t, "starter", nil)

	for i := 0; i < 3; i++ {
		resp, body := do(t, http.MethodPost, srv.URL+"/", "owner", Input{Name: "Store"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %d: %d %s", i, resp.StatusCode, body)
		}
	}

	resp, body := do(t, http.MethodPost, srv.URL+"/", "owner", Input{Name: "Fourth"})
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.StatusCode)
	}
	var e map[string]string
	json.Unmarshal(body, &e)
	if e["code"] != "plan_limit" {
		t.Errorf("body = %s", body)
	}
}

func TestCreate_GrowthPlanNotLimitedAtThree(t *testing.T) {
	srv, _ := newServer(t, "growth", nil)
	for i := 0; i < 4; i++ {
		resp, _ := do(t, http.MethodPost, srv.URL+"/", "owner", Input{Name: "Store"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %d: %d", i, resp.StatusCode)
		}
	}
}

func TestCreate_ValidatesAndGeocodes(t *testing.T) {
	geo := &fakeGeo{}
	srv, _ := newServer(t, "starter", geo)

	resp, _ := do(t, http.MethodPost, srv.URL+"/", "owner", Input{Name: "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank name: %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodPost, srv.URL+"/", "owner", Input{Name: "X", Timezone: "Mars/Olympus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad timezone: %d", resp.StatusCode)
	}

	resp, body := do(t, http.MethodPost, srv.URL+"/", "owner", Input{
		Name: "Main St", Address: "221 Main St", Tags: []string{"Flagship", "flagship ", ""},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	var s Store
	json.Unmarshal(body, &s)
	if s.Lat == nil || *s.Lat != 1.5 || s.Timezone != "UTC" {
		t.Errorf("store = %+v", s)
	}
	if len(s.Tags) != 1 || s.Tags[0] != "flagship" {
		t.Errorf("tags = %v", s.Tags)
	}
	if geo.calls != 1 {
		t.Errorf("geocode calls = %d", geo.calls)
	}
}

func TestUpdateAndAccountScoping(t *testing.T) {
	srv, repo := newServer(t, "starter", nil)
	repo.Create(&Store{ID: "s1", AccountID: "a1", Name: "Old", Timezone: "UTC"})

	resp, body := do(t, http.MethodPatch, srv.URL+"/s1", "owner", Input{Name: "New"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}
	if got, _ := repo.Get("a1", "s1"); got.Name != "New" || got.Timezone != "UTC" {
		t.Errorf("stored = %+v", got)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/s1", "other", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-account read: %d", resp.StatusCode)
	}
}

func TestMemberCannotDelete(t *testing.T) {
	srv, repo := newServer(t, "starter", nil)
	repo.Create(&Store{ID: "s1", AccountID: "a1", Name: "Keep"})

	resp, _ := do(t, http.MethodDelete, srv.URL+"/s1", "member", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member delete: %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, srv.URL+"/", "member", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member list: %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodDelete, srv.URL+"/s1", "owner", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner delete: %d", resp.StatusCode)
	}
}

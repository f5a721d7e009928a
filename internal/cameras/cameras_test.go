package cameras

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storesight/console/internal/client/apiclient"
	"github.com/storesight/console/internal/client/roieditor"
	"github.com/storesight/console/internal/client/services"
	"github.com/storesight/console/internal/roi"
	"github.com/storesight/console/internal/utils"
)

type memRepo struct {
	mu      sync.Mutex
	cameras map[string]Camera
	rois    map[string]ROIRecord
	stores  map[string]string // store id -> account id
}

func newMemRepo() *memRepo {
	return &memRepo{cameras: map[string]Camera{}, rois: map[string]ROIRecord{}, stores: map[string]string{}}
}

func (m *memRepo) ListByStore(accountID, storeID string) ([]Camera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Camera
	for _, c := range m.cameras {
		if c.AccountID == accountID && c.StoreID == storeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) Get(accountID, id string) (Camera, error) {
	c, err := m.ByID(id)
	if err != nil || c.AccountID != accountID {
		return Camera{}, ErrNotFound
	}
	return c, nil
}

func (m *memRepo) ByID(id string) (Camera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cameras[id]
	if !ok {
		return Camera{}, ErrNotFound
	}
	return c, nil
}

func (m *memRepo) StoreExists(accountID, storeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores[storeID] == accountID, nil
}

func (m *memRepo) Create(c *Camera) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cameras[c.ID] = *c
	return nil
}

func (m *memRepo) Save(c *Camera) error { return m.Create(c) }

func (m *memRepo) Delete(accountID, id string) error {
	if _, err := m.Get(accountID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cameras, id)
	delete(m.rois, id)
	return nil
}

func (m *memRepo) SetHealth(id, status, agentVersion string, seenAt time.Time) (Camera, error) {
	c, err := m.ByID(id)
	if err != nil {
		return c, err
	}
	c.Status, c.LastSeenAt, c.AgentVersion = status, &seenAt, agentVersion
	return c, m.Save(&c)
}

func (m *memRepo) ROI(cameraID string) (ROIRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rois[cameraID]
	if !ok {
		return ROIRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *memRepo) SaveROI(rec *ROIRecord, expected int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rois[rec.CameraID].Version != expected {
		return ErrVersionConflict
	}
	rec.Version = expected + 1
	m.rois[rec.CameraID] = *rec
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

type staticToken string

func (s staticToken) Token() string { return string(s) }

// newServer mounts cameras at /cameras and the store listing under /stores.
// Account a1 owns store s1 with camera c1.
func newServer(t *testing.T) (*httptest.Server, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	repo.stores["s1"] = "a1"
	repo.Create(&Camera{ID: "c1", AccountID: "a1", StoreID: "s1", Name: "Entrance", Status: StatusOnline})

	exp := time.Now().Add(time.Hour)
	fetcher := tokens{
		"owner":  {UserID: "u1", AccountID: "a1", Role: "owner", ExpiresAt: exp},
		"member": {UserID: "u2", AccountID: "a1", Role: "member", ExpiresAt: exp},
		"other":  {UserID: "u3", AccountID: "a2", Role: "owner", ExpiresAt: exp},
	}
	h := NewHandler(repo)

	r := chi.NewRouter()
	r.Mount("/cameras", SetupRoutes(h, fetcher))
	stores := chi.NewRouter()
	StoreRoutes(h)(stores)
	r.Mount("/stores", stores)

	srv := httptest.NewServer(withSession(r, fetcher))
	t.Cleanup(srv.Close)
	return srv, repo
}

// withSession injects the session for routes mounted without the middleware.
func withSession(next http.Handler, f tokens) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := f[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]; ok {
			r = r.WithContext(utils.WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

func client(srv *httptest.Server, token string) *services.Services {
	return services.New(apiclient.New(srv.URL, staticToken(token)))
}

func rect(name string, x0, y0, x1, y1 float64) roi.Shape {
	return roi.NewShape(name, roi.KindRect, []roi.Point{{X: x0, Y: y0}, {X: x1, Y: y1}})
}

func TestGetROI_EmptyDraftAtVersionZero(t *testing.T) {
	srv, _ := newServer(t)
	cfg, err := client(srv, "member").Cameras.LoadROI(context.Background(), "c1")
	if err != nil {
		t.Fatalf("LoadROI: %v", err)
	}
	if cfg.Version != 0 || cfg.Status != roi.StatusDraft || len(cfg.Zones) != 0 || cfg.Canvas != roi.DefaultCanvas {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestSaveROI_IncrementsAndDetectsConflict(t *testing.T) {
	srv, repo := newServer(t)
	cams := client(srv, "owner").Cameras
	ctx := context.Background()

	req := roi.SaveRequest{Version: 0, Zones: []roi.Shape{rect("door", 0.1, 0.1, 0.4, 0.4)}, Canvas: roi.DefaultCanvas, Status: roi.StatusDraft}
	resp, err := cams.SaveROI(ctx, "c1", req)
	if err != nil {
		t.Fatalf("SaveROI: %v", err)
	}
	if resp.Version != 1 || resp.Status != roi.StatusDraft {
		t.Fatalf("resp = %+v", resp)
	}

	// Same base version again: someone else already saved v1.
	_, err = cams.SaveROI(ctx, "c1", req)
	if apiclient.CodeOf(err) != apiclient.CodeVersionConflict || apiclient.KindOf(err) != apiclient.KindValidation {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if repo.rois["c1"].Version != 1 {
		t.Fatalf("stored version = %d", repo.rois["c1"].Version)
	}

	req.Version = 1
	req.Status = roi.StatusPublished
	resp, err = cams.SaveROI(ctx, "c1", req)
	if err != nil || resp.Version != 2 || resp.Status != roi.StatusPublished {
		t.Fatalf("publish = %+v, %v", resp, err)
	}

	cfg, _ := cams.LoadROI(ctx, "c1")
	if len(cfg.Zones) != 1 || cfg.Zones[0].Name != "door" || cfg.Status != roi.StatusPublished {
		t.Fatalf("reloaded = %+v", cfg)
	}
}

func TestSaveROI_RejectsInvalidZones(t *testing.T) {
	srv, _ := newServer(t)
	cams := client(srv, "owner").Cameras
	ctx := context.Background()

	cases := map[string]roi.SaveRequest{
		"tiny rect":     {Zones: []roi.Shape{rect("x", 0.1, 0.1, 0.105, 0.5)}, Canvas: roi.DefaultCanvas},
		"no canvas":     {Zones: []roi.Shape{rect("x", 0.1, 0.1, 0.5, 0.5)}},
		"publish empty": {Canvas: roi.DefaultCanvas, Status: roi.StatusPublished},
		"two-point polygon": {Canvas: roi.DefaultCanvas, Zones: []roi.Shape{
			roi.NewShape("p", roi.KindPolygon, []roi.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}),
		}},
	}
	for name, req := range cases {
		_, err := cams.SaveROI(ctx, "c1", req)
		if apiclient.KindOf(err) != apiclient.KindValidation {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestROI_OtherAccountGetsNotFound(t *testing.T) {
	srv, _ := newServer(t)
	_, err := client(srv, "other").Cameras.LoadROI(context.Background(), "c1")
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestZonesAt(t *testing.T) {
	srv, _ := newServer(t)
	cams := client(srv, "owner").Cameras
	ctx := context.Background()
	tri := roi.NewShape("aisle", roi.KindPolygon, []roi.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	_, err := cams.SaveROI(ctx, "c1", roi.SaveRequest{
		Zones:  []roi.Shape{rect("door", 0.1, 0.1, 0.4, 0.4), tri},
		Canvas: roi.DefaultCanvas, Status: roi.StatusDraft,
	})
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Zones []string `json:"zones"`
	}
	api := apiclient.New(srv.URL, staticToken("owner"))
	if err := api.Get(ctx, "/cameras/c1/roi/zones?x=0.2&y=0.2", &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Zones) != 2 {
		t.Fatalf("zones at (0.2,0.2) = %v", out.Zones)
	}
	if err := api.Get(ctx, "/cameras/c1/roi/zones?x=0.9&y=0.9", &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Zones) != 0 {
		t.Fatalf("zones at (0.9,0.9) = %v", out.Zones)
	}
}

func TestEditorRoundTrip(t *testing.T) {
	srv, _ := newServer(t)
	cams := client(srv, "owner").Cameras
	ctx := context.Background()

	ed := roieditor.New("c1", cams, roieditor.WithBounds(roieditor.Rect{W: 960, H: 540}))
	if err := ed.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ed.SetZoneName("checkout")
	ed.PointerDown(96, 54)
	ed.PointerMove(480, 270)
	if !ed.PointerUp() {
		t.Fatal("rect not committed")
	}
	if err := ed.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ed.Version() != 1 || ed.Status() != roi.StatusPublished {
		t.Fatalf("version=%d status=%s", ed.Version(), ed.Status())
	}

	// A second editor working from the stale version cannot overwrite.
	stale := roieditor.New("c1", cams, roieditor.WithBounds(roieditor.Rect{W: 960, H: 540}))
	if err := stale.Save(ctx); apiclient.CodeOf(err) != apiclient.CodeVersionConflict {
		t.Fatalf("stale save = %v", err)
	}
}

func TestCreateAndListByStore(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()

	_, err := client(srv, "member").Cameras.Create(ctx, services.CameraInput{StoreID: "s1", Name: "Back door"})
	if apiclient.KindOf(err) != apiclient.KindPermission {
		t.Fatalf("member create: %v", err)
	}

	owner := client(srv, "owner").Cameras
	cam, err := owner.Create(ctx, services.CameraInput{StoreID: "s1", Name: "Back door"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cam.Status != StatusUnknown {
		t.Errorf("status = %q", cam.Status)
	}
	if _, err := owner.Create(ctx, services.CameraInput{StoreID: "nope", Name: "x"}); err == nil {
		t.Error("camera created in unknown store")
	}

	list, err := owner.ListByStore(ctx, "s1")
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %v, %v", list, err)
	}

	h, err := owner.Health(ctx, "c1")
	if err != nil || h.Status != StatusOnline {
		t.Fatalf("health = %+v, %v", h, err)
	}
}

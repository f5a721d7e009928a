package onboarding

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/storesight/console/internal/client/apiclient"
	"github.com/storesight/console/internal/client/services"
	"github.com/storesight/console/internal/utils"
)

type memRepo struct {
	mu   sync.Mutex
	rows map[string]Progress
}

func (m *memRepo) Get(accountID string) (Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[accountID]
	if !ok {
		return Progress{}, ErrNotFound
	}
	return p, nil
}

func (m *memRepo) Save(p *Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[p.AccountID] = *p
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

func newClient(t *testing.T) (*services.Onboarding, *services.Onboarding) {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	fetcher := tokens{
		"t1": {UserID: "u1", AccountID: "acct-1", Role: "owner", ExpiresAt: exp},
		"t2": {UserID: "u2", AccountID: "acct-2", Role: "owner", ExpiresAt: exp},
	}
	srv := httptest.NewServer(SetupRoutes(NewHandler(&memRepo{rows: map[string]Progress{}}), fetcher))
	t.Cleanup(srv.Close)
	one := services.New(apiclient.New(srv.URL, staticToken("t1"))).Onboarding
	two := services.New(apiclient.New(srv.URL, staticToken("t2"))).Onboarding
	return one, two
}

func TestState_FreshAccount(t *testing.T) {
	api, _ := newClient(t)
	st, err := api.State(context.Background())
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.CurrentStep != "business" || len(st.CompletedSteps) != 0 || st.Completed {
		t.Fatalf("state = %+v", st)
	}
}

func TestSaveStep_AdvancesAndKeepsAnswers(t *testing.T) {
	api, other := newClient(t)
	ctx := context.Background()

	st, err := api.SaveStep(ctx, "business", map[string]any{"name": "Corner Shop"})
	if err != nil {
		t.Fatalf("SaveStep: %v", err)
	}
	if st.CurrentStep != "stores" {
		t.Fatalf("current = %q", st.CurrentStep)
	}

	// out of order: cameras done before stores, current stays on stores
	st, _ = api.SaveStep(ctx, "cameras", map[string]any{"count": 4})
	if st.CurrentStep != "stores" || len(st.CompletedSteps) != 2 {
		t.Fatalf("state = %+v", st)
	}

	// saving a step again replaces its answers without duplicating it
	st, _ = api.SaveStep(ctx, "business", map[string]any{"name": "Corner Shop Ltd"})
	if len(st.CompletedSteps) != 2 {
		t.Fatalf("completed = %v", st.CompletedSteps)
	}
	biz, _ := st.Answers["business"].(map[string]any)
	if biz["name"] != "Corner Shop Ltd" {
		t.Fatalf("answers = %+v", st.Answers)
	}
	if _, ok := st.Answers["cameras"]; !ok {
		t.Fatal("earlier answers lost")
	}

	fresh, _ := other.State(ctx)
	if len(fresh.CompletedSteps) != 0 {
		t.Fatal("progress leaked across accounts")
	}
}

func TestSaveStep_UnknownStep(t *testing.T) {
	api, _ := newClient(t)
	_, err := api.SaveStep(context.Background(), "payroll", nil)
	if apiclient.KindOf(err) != apiclient.KindValidation {
		t.Fatalf("err = %v", err)
	}
}

func TestComplete_LocksWizard(t *testing.T) {
	api, _ := newClient(t)
	ctx := context.Background()
	api.SaveStep(ctx, "business", map[string]any{"name": "x"})

	st, err := api.Complete(ctx)
	if err != nil || !st.Completed {
		t.Fatalf("Complete = %+v, %v", st, err)
	}
	if _, err := api.SaveStep(ctx, "stores", nil); apiclient.KindOf(err) != apiclient.KindValidation {
		t.Fatalf("save after complete: %v", err)
	}
	again, err := api.Complete(ctx)
	if err != nil || !again.Completed {
		t.Fatalf("second Complete = %+v, %v", again, err)
	}
}

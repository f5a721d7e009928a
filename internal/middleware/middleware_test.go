package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/storesight/console/internal/middleware"
	"github.com/storesight/console/internal/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mockFetcher implements middleware.SessionFetcher without any database dependency.
type mockFetcher struct {
	session utils.SessionData
	err     error
}

func (m mockFetcher) FindSessionByToken(token string) (utils.SessionData, error) {
	return m.session, m.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// callWithToken wraps a 200-OK inner handler in mw, optionally setting a
// bearer token, and returns the recorded response.
func callWithToken(t *testing.T, mw func(http.Handler) http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	rec := callWithToken(t, middleware.SessionMiddleware(mockFetcher{}), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    "some-user",
			ExpiresAt: time.Now().Add(-1 * time.Hour),
		},
	}
	rec := callWithToken(t, middleware.SessionMiddleware(fetcher), "expired-token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Session expired") {
		t.Errorf("expected body to contain %q, got: %q", "Session expired", body)
	}
}

func TestSessionMiddleware_FetcherError(t *testing.T) {
	fetcher := mockFetcher{err: errors.New("session not found")}
	rec := callWithToken(t, middleware.SessionMiddleware(fetcher), "nonexistent")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_ValidSession checks that user, account and role are
// injected into the request context.
func TestSessionMiddleware_ValidSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    "user-123",
			AccountID: "acct-9",
			Role:      "owner",
			ExpiresAt: time.Now().Add(1 * time.Hour),
		},
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetUserIDFromContext(r.Context())
		aid, _ := utils.GetAccountIDFromContext(r.Context())
		if uid != "user-123" || aid != "acct-9" || utils.GetRoleFromContext(r.Context()) != "owner" {
			http.Error(w, "bad context: "+uid+"/"+aid, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "bearer valid-token")
	rec := httptest.NewRecorder()
	middleware.SessionMiddleware(fetcher)(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

func TestRoleMiddleware_MissingUserID(t *testing.T) {
	rec := callWithToken(t, middleware.RoleMiddleware("owner"), "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "missing user ID") {
		t.Errorf("expected body to contain %q, got: %q", "missing user ID", body)
	}
}

func TestRoleMiddleware_WrongRole(t *testing.T) {
	ctx := utils.WithSession(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		utils.SessionData{UserID: "u", Role: "member"})
	req := httptest.NewRequest(http.MethodDelete, "/stores/1", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	middleware.RoleMiddleware("owner", "admin")(okHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"https://console.example"})

	req := httptest.NewRequest(http.MethodOptions, "/stores", nil)
	req.Header.Set("Origin", "https://console.example")
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://console.example" {
		t.Errorf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/stores", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin echoed: %q", got)
	}
}

func TestAllowedOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example, ,https://b.example")
	got := middleware.AllowedOriginsFromEnv()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("origins = %v", got)
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rl := middleware.NewRateLimiter(0.01, 2, zap.New(core))
	h := rl.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("second client got %d", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	rec := httptest.NewRecorder()
	middleware.RequestLogger(zap.New(core))(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cameras/x", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(404) || fields["path"] != "/cameras/x" {
		t.Errorf("fields = %v", fields)
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("level = %v", entries[0].Level)
	}
}

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/storesight/console/internal/client/services"
	"github.com/storesight/console/internal/client/storage"
)

type fakeAuth struct {
	loginErr  error
	logoutErr error
	logouts   int
	refreshes int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (services.LoginResponse, error) {
	if f.loginErr != nil {
		return services.LoginResponse{}, f.loginErr
	}
	return services.LoginResponse{Token: "tok-" + email, User: services.User{UserID: "u1", Email: email}}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeAuth) Refresh(ctx context.Context) (services.LoginResponse, error) {
	f.refreshes++
	return services.LoginResponse{Token: "tok-refreshed", User: services.User{UserID: "u1"}}, nil
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	st, err := storage.Open(filepath.Join(t.TempDir(), "storage.json"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	return st
}

func TestLoginPersistsAndRehydrates(t *testing.T) {
	st := openStore(t)
	s := New(&fakeAuth{}, st, nil)

	if err := s.RequireAuth(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("RequireAuth before login = %v", err)
	}
	if _, err := s.Login(context.Background(), "ops@shop.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token() != "tok-ops@shop.com" {
		t.Fatalf("token = %q", s.Token())
	}

	fresh := New(&fakeAuth{}, st, nil)
	fresh.Rehydrate()
	if !fresh.Authenticated() {
		t.Fatal("rehydrated session is not authenticated")
	}
	u, ok := fresh.User()
	if !ok || u.Email != "ops@shop.com" {
		t.Fatalf("user = %+v ok=%v", u, ok)
	}
}

func TestLoginFailureLeavesSignedOut(t *testing.T) {
	s := New(&fakeAuth{loginErr: errors.New("invalid credentials")}, openStore(t), nil)
	if _, err := s.Login(context.Background(), "x@y.z", "bad"); err == nil {
		t.Fatal("expected error")
	}
	if s.Authenticated() {
		t.Fatal("session authenticated after failed login")
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	st := openStore(t)
	auth := &fakeAuth{logoutErr: errors.New("offline")}
	s := New(auth, st, nil)
	s.Login(context.Background(), "a@b.co", "pw")

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if auth.logouts != 1 {
		t.Fatalf("server logout calls = %d", auth.logouts)
	}
	if s.Authenticated() || st.Token() != "" {
		t.Fatal("session not cleared")
	}
}

func TestRefreshRequiresLogin(t *testing.T) {
	auth := &fakeAuth{}
	s := New(auth, openStore(t), nil)
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Refresh = %v", err)
	}
	s.Login(context.Background(), "a@b.co", "pw")
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.Token() != "tok-refreshed" || auth.refreshes != 1 {
		t.Fatalf("token = %q refreshes = %d", s.Token(), auth.refreshes)
	}
}

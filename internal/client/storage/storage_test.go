package storage

import (
	"path/filepath"
	"testing"
)

func TestStore_RoundTripAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Token() != "" {
		t.Fatalf("fresh store has token %q", s.Token())
	}
	if err := s.Set(KeyAuthToken, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	type user struct{ Email string }
	if err := s.Set(KeyAuthUser, user{Email: "a@b.co"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.Token() != "abc" {
		t.Fatalf("token = %q", again.Token())
	}
	var u user
	if ok, err := again.Get(KeyAuthUser, &u); !ok || err != nil || u.Email != "a@b.co" {
		t.Fatalf("user = %+v ok=%v err=%v", u, ok, err)
	}

	if err := again.Remove(KeyAuthToken, KeyAuthUser); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	third, _ := Open(path)
	if third.Token() != "" {
		t.Fatalf("token survived Remove")
	}
}

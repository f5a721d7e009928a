package demo

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/storesight/console/internal/client/apiclient"
	"github.com/storesight/console/internal/client/services"
)

type memRepo struct{ saved []Request }

func (m *memRepo) Create(r *Request) error {
	m.saved = append(m.saved, *r)
	return nil
}

type noToken struct{}

func (noToken) Token() string { return "" }

func TestCreate(t *testing.T) {
	repo := &memRepo{}
	srv := httptest.NewServer(SetupRoutes(NewHandler(repo), nil))
	defer srv.Close()
	api := services.New(apiclient.New(srv.URL, noToken{})).Demo
	ctx := context.Background()

	cases := []struct {
		name    string
		req     services.DemoRequest
		wantErr bool
	}{
		{"valid", services.DemoRequest{Name: " Pat ", Email: "pat@chain.example", Company: "Chain Co", Stores: 12, SessionID: "s-1"}, false},
		{"bad email", services.DemoRequest{Name: "Pat", Email: "pat@chain", Company: "Chain Co"}, true},
		{"no company", services.DemoRequest{Name: "Pat", Email: "pat@chain.example"}, true},
		{"negative stores", services.DemoRequest{Name: "Pat", Email: "pat@chain.example", Company: "C", Stores: -1}, true},
	}
	for _, tc := range cases {
		err := api.Request(ctx, tc.req)
		if tc.wantErr {
			if apiclient.KindOf(err) != apiclient.KindValidation {
				t.Errorf("%s: err = %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
		}
	}
	if len(repo.saved) != 1 || repo.saved[0].Name != "Pat" || repo.saved[0].SessionID != "s-1" {
		t.Fatalf("saved = %+v", repo.saved)
	}
}

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fanbase-quiz-service/internal/domain"
)

func TestHTTPResolverResolvesUser(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(domain.User{ID: "u1", DisplayName: "Alice"})
	}))
	defer provider.Close()

	resolver := NewHTTPResolver(provider.URL, provider.Client())

	user, err := resolver.ResolveUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "u1" || user.DisplayName != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := resolver.ResolveUser(context.Background(), "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestHTTPResolverUnexpectedStatus(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer provider.Close()

	resolver := NewHTTPResolver(provider.URL, provider.Client())
	if _, err := resolver.ResolveUser(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver(map[string]string{"u1": "Alice"})

	user, err := resolver.ResolveUser(context.Background(), "u1")
	if err != nil || user.DisplayName != "Alice" {
		t.Fatalf("unexpected result: %+v, %v", user, err)
	}
	if _, err := resolver.ResolveUser(context.Background(), "u2"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

package scholar_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"citemap/internal/scholar"
	"citemap/internal/services"
)

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := scholar.New(""); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestAuthorByIDSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/author/abc123" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" {
			t.Fatalf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != "citemap-test" {
			t.Fatalf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Ada Lovelace","affiliation":"Analytical Engine Lab","organization":"Royal Society"}`))
	}))
	t.Cleanup(server.Close)

	client, err := scholar.New(server.URL,
		scholar.WithAPIKey("key"),
		scholar.WithUserAgent("citemap-test"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	author, err := client.AuthorByID(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("AuthorByID returned error: %v", err)
	}
	if author.Name != "Ada Lovelace" {
		t.Fatalf("unexpected author: %#v", author)
	}
	if author.ID != "abc123" {
		t.Fatalf("expected id backfilled from request, got %q", author.ID)
	}
}

func TestAuthorByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, err := scholar.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.AuthorByID(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("not-found lookups must not be retried")
	}
}

func TestAuthorByIDRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := scholar.New(server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.AuthorByID(context.Background(), "abc")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
	if !services.Retryable(err) {
		t.Fatal("rate limited lookups must be retried")
	}
}

func TestAuthorByIDEmptyID(t *testing.T) {
	client, err := scholar.New("https://example.com")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.AuthorByID(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty author id")
	}
}

func TestAffiliationFor(t *testing.T) {
	author := &scholar.Author{
		Affiliation:  "Self-reported Lab",
		Organization: "Verified University",
	}

	if got, ok := author.AffiliationFor(false); !ok || got != "Self-reported Lab" {
		t.Fatalf("aggressive mode: got %q ok=%v", got, ok)
	}
	if got, ok := author.AffiliationFor(true); !ok || got != "Verified University" {
		t.Fatalf("conservative mode: got %q ok=%v", got, ok)
	}

	bare := &scholar.Author{Name: "Nameless"}
	if _, ok := bare.AffiliationFor(true); ok {
		t.Fatal("expected no affiliation in conservative mode without organization")
	}
	if _, ok := bare.AffiliationFor(false); ok {
		t.Fatal("expected no affiliation in aggressive mode without affiliation")
	}
}

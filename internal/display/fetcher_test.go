package display

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kiosk-signage/internal/catalog"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotTS, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTS = r.URL.Query().Get("ts")
		gotCache = r.Header.Get("Cache-Control")
		_ = json.NewEncoder(w).Encode(catalog.Feed{
			OK:             true,
			Count:          1,
			RefreshSeconds: 30,
			Media:          []catalog.MediaItem{{ID: "a.jpg", URL: "/media/a.jpg", Kind: catalog.KindImage}},
		})
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL+"/api/videos?debug=1", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	feed, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if feed.RefreshSeconds != 30 || len(feed.Media) != 1 {
		t.Errorf("unexpected feed: %+v", feed)
	}
	if gotTS == "" {
		t.Error("expected ts cache-buster")
	}
	if gotCache != "no-store" {
		t.Errorf("Cache-Control = %q", gotCache)
	}
}

func TestHTTPFetcher_Fetch_non_2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, _ := NewHTTPFetcher(srv.URL, srv.Client())
	_, err := f.Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("expected StatusError 500, got %v", err)
	}
}

func TestNewHTTPFetcher_bad_scheme(t *testing.T) {
	if _, err := NewHTTPFetcher("ftp://example.com/feed", nil); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

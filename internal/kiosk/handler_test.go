package kiosk

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kiosk-signage/internal/catalog"

	"github.com/go-chi/chi/v5"
)

func newTestHandler(t *testing.T, n int, opts Options) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	svc := newTestService(n, opts)
	log := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	files := MediaFiles{Dir: dir, Classifier: catalog.NewClassifier(nil, nil)}
	return NewHandler(svc, files, log, nil), dir
}

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func do(r http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetFeed(t *testing.T) {
	h, _ := newTestHandler(t, 25, Options{RefreshSeconds: 45})
	r := newTestRouter(h)

	rec := do(r, http.MethodGet, "/api/videos?ts=123", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"ok", "count", "refreshSeconds", "mirrorVideos", "requireAtLeast", "staticCenterImage", "recentStrategy", "media"} {
		if _, ok := body[key]; !ok {
			t.Errorf("feed missing %q", key)
		}
	}
	if body["refreshSeconds"] != float64(45) {
		t.Errorf("refreshSeconds = %v", body["refreshSeconds"])
	}

	rec = do(r, http.MethodGet, "/api/videos?debug=1", nil)
	var feed catalog.Feed
	_ = json.Unmarshal(rec.Body.Bytes(), &feed)
	if len(feed.Media) != 20 {
		t.Errorf("debug feed has %d items, want 20", len(feed.Media))
	}
}

func TestHandler_session_lifecycle(t *testing.T) {
	h, _ := newTestHandler(t, 30, Options{})
	r := newTestRouter(h)

	rec := do(r, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created SessionCreated
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.Session == "" {
		t.Fatalf("bad create body: %s", rec.Body.String())
	}

	roundURL := "/api/sessions/" + string(created.Session) + "/round"
	rec = do(r, http.MethodGet, roundURL, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var round Round
	if err := json.Unmarshal(rec.Body.Bytes(), &round); err != nil {
		t.Fatal(err)
	}
	if round.Round != 1 || len(round.Slots) != 10 || round.Session != created.Session {
		t.Errorf("unexpected round: %+v", round)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("round must not be cached")
	}

	rec = do(r, http.MethodDelete, "/api/sessions/"+string(created.Session), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	rec = do(r, http.MethodDelete, "/api/sessions/"+string(created.Session), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("second delete: expected 204, got %d", rec.Code)
	}

	rec = do(r, http.MethodGet, roundURL, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("round after end: expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetRound_unknown_session(t *testing.T) {
	h, _ := newTestHandler(t, 5, Options{})
	rec := do(newTestRouter(h), http.MethodGet, "/api/sessions/nope/round", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ServeMedia(t *testing.T) {
	h, dir := newTestHandler(t, 1, Options{})
	r := newTestRouter(h)
	content := "0123456789"
	if err := os.WriteFile(filepath.Join(dir, "clip one.mp4"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("full_body", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/media/clip%20one.mp4", nil)
		if rec.Code != http.StatusOK || rec.Body.String() != content {
			t.Fatalf("got %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Accept-Ranges") != "bytes" || rec.Header().Get("Cache-Control") != "no-store" {
			t.Errorf("headers = %v", rec.Header())
		}
		if rec.Header().Get("Content-Type") != "video/mp4" {
			t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
		}
	})

	t.Run("partial", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/media/clip%20one.mp4", map[string]string{"Range": "bytes=2-5"})
		if rec.Code != http.StatusPartialContent {
			t.Fatalf("expected 206, got %d", rec.Code)
		}
		if rec.Body.String() != "2345" {
			t.Errorf("body = %q", rec.Body.String())
		}
		if got := rec.Header().Get("Content-Range"); got != "bytes 2-5/10" {
			t.Errorf("Content-Range = %q", got)
		}
	})

	t.Run("open_ended", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/media/clip%20one.mp4", map[string]string{"Range": "bytes=7-"})
		if rec.Code != http.StatusPartialContent || rec.Body.String() != "789" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("Content-Range"); got != "bytes 7-9/10" {
			t.Errorf("Content-Range = %q", got)
		}
	})

	t.Run("unsatisfiable", func(t *testing.T) {
		for _, rng := range []string{"bytes=10-", "bytes=2-10", "bytes=5-3"} {
			rec := do(r, http.MethodGet, "/media/clip%20one.mp4", map[string]string{"Range": rng})
			if rec.Code != http.StatusRequestedRangeNotSatisfiable {
				t.Errorf("%s: expected 416, got %d", rng, rec.Code)
			}
			if got := rec.Header().Get("Content-Range"); got != "bytes */10" {
				t.Errorf("%s: Content-Range = %q", rng, got)
			}
		}
	})

	t.Run("malformed_range_ignored", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/media/clip%20one.mp4", map[string]string{"Range": "bytes=0-1,4-5"})
		if rec.Code != http.StatusOK || rec.Body.String() != content {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("head", func(t *testing.T) {
		rec := do(r, http.MethodHead, "/media/clip%20one.mp4", nil)
		if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
			t.Errorf("got %d with %d body bytes", rec.Code, rec.Body.Len())
		}
		if rec.Header().Get("Content-Length") != "10" {
			t.Errorf("Content-Length = %q", rec.Header().Get("Content-Length"))
		}
	})

	t.Run("rejected_names", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, ".secret.mp4"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		for _, target := range []string{
			"/media/.secret.mp4",
			"/media/..%2Fetc.mp4",
			"/media/missing.mp4",
			"/media/notes.txt",
		} {
			rec := do(r, http.MethodGet, target, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s: expected 404, got %d", target, rec.Code)
			}
		}
	})
}

func TestHandler_ServeCenterImage(t *testing.T) {
	h, dir := newTestHandler(t, 1, Options{})
	r := newTestRouter(h)

	if rec := do(r, http.MethodGet, CenterImagePath, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unconfigured center image: expected 404, got %d", rec.Code)
	}

	banner := filepath.Join(dir, "banner.png")
	if err := os.WriteFile(banner, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.files.CenterImage = banner
	rec := do(r, http.MethodGet, CenterImagePath, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "png" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_Static(t *testing.T) {
	h, _ := newTestHandler(t, 1, Options{})
	r := newTestRouter(h)

	rec := do(r, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `data-cell="r1c1"`) {
		t.Fatalf("index: got %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
	for _, asset := range []string{"/app.js", "/style.css", "/placeholder.svg"} {
		if rec := do(r, http.MethodGet, asset, nil); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", asset, rec.Code)
		}
	}
}

func TestHandler_Healthz(t *testing.T) {
	h, _ := newTestHandler(t, 1, Options{})
	rec := do(newTestRouter(h), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

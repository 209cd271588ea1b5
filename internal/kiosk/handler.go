package kiosk

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"

	"kiosk-signage/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// Handler exposes kiosk HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	files   MediaFiles
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, media files,
// Logger, and optional Metrics. Metrics may be nil (e.g. in tests).
func NewHandler(svc *Service, files MediaFiles, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, files: files, log: log, metrics: m}
}

// Routes registers every kiosk endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Get("/api/videos", h.GetFeed)
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/round", h.GetRound)
			r.Delete("/", h.EndSession)
		})
	})
	r.Get("/media/{name}", h.ServeMedia)
	r.Head("/media/{name}", h.ServeMedia)
	r.Get(CenterImagePath, h.ServeCenterImage)
	r.Head(CenterImagePath, h.ServeCenterImage)
	r.Get("/*", h.Static().ServeHTTP)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// GetFeed handles GET /api/videos. ?debug=1 caps the media list.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	feed := h.svc.Feed(r.URL.Query().Get("debug") == "1")
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, feed)
}

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	created, evicted, err := h.svc.CreateSession()
	if evicted > 0 {
		h.log.Info("idle sessions evicted", slog.Int("count", evicted))
		if h.metrics != nil {
			h.metrics.AddSessionsEnded(evicted)
		}
	}
	if err != nil {
		h.log.Error("create session failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.log.Info("session created", slog.String("session_id", string(created.Session)))
	if h.metrics != nil {
		h.metrics.IncSessionsCreated()
	}
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusCreated, created)
}

// GetRound handles GET /api/sessions/{session_id}/round.
func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	round, res, err := h.svc.NextRound(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			h.log.Debug("round for unknown session", slog.String("session_id", string(id)))
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.log.Error("next round failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if need := h.svc.RequireAtLeast(); need > 0 && res.Available < need {
		h.log.Warn("catalog below required size",
			slog.String("session_id", string(id)),
			slog.Int("available", res.Available),
			slog.Int("require_at_least", need))
	}
	h.log.Debug("round picked",
		slog.String("session_id", string(id)),
		slog.Int("round", res.Round),
		slog.Int("items", len(res.Items)),
		slog.Int("repeats", res.Repeats))
	if h.metrics != nil {
		h.metrics.ObserveRound(res.Repeats)
	}

	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, round)
}

// EndSession handles DELETE /api/sessions/{session_id}. Ending an unknown
// session still answers 204.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if h.svc.EndSession(id) {
		h.log.Info("session ended", slog.String("session_id", string(id)))
		if h.metrics != nil {
			h.metrics.AddSessionsEnded(1)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeMedia handles GET and HEAD /media/{name}.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		name = unescaped
	}

	path, err := h.files.Resolve(name)
	if err != nil {
		h.log.Debug("media name rejected", slog.String("name", name))
		http.NotFound(w, r)
		return
	}
	h.sendFile(w, r, path)
}

// ServeCenterImage handles GET and HEAD /center-image.
func (h *Handler) ServeCenterImage(w http.ResponseWriter, r *http.Request) {
	if h.files.CenterImage == "" {
		http.NotFound(w, r)
		return
	}
	h.sendFile(w, r, h.files.CenterImage)
}

func (h *Handler) sendFile(w http.ResponseWriter, r *http.Request, path string) {
	n, err := serveFile(w, r, path)
	if h.metrics != nil {
		h.metrics.AddMediaBytes(n)
	}
	if err == nil {
		return
	}
	if n > 0 {
		// headers are gone; the client sees a short body
		h.log.Debug("media copy interrupted", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	h.log.Error("media read failed", slog.String("path", path), slog.String("error", err.Error()))
	w.WriteHeader(http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug("write response failed", slog.String("error", err.Error()))
	}
}

// Package http exposes stored pen sessions over a small read-mostly HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/quill/pkg/codec"
	"github.com/aretw0/quill/pkg/domain"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves anchors held by a BlobStore.
type Server struct {
	Store    ports.BlobStore
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer mounts GET /metrics for the given gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the request logger. Without it the handler logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.Logger = l
		}
	}
}

// AnchorSummary is the listing entry for one anchor.
type AnchorSummary struct {
	Anchor  string `json:"anchor"`
	Strokes int    `json:"strokes"`
	Points  int    `json:"points"`
	Corrupt bool   `json:"corrupt,omitempty"`
}

// NewHandler creates a new HTTP handler for the store.
func NewHandler(store ports.BlobStore, opts ...Option) http.Handler {
	s := &Server{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/anchors", func(r chi.Router) {
		r.Get("/", s.ListAnchors)
		r.Get("/{anchor}", s.GetAnchor)
		r.Delete("/{anchor}", s.DeleteAnchor)
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListAnchors handles GET /anchors.
func (s *Server) ListAnchors(w http.ResponseWriter, r *http.Request) {
	anchors, err := s.Store.List(r.Context())
	if err != nil {
		http.Error(w, "List error", http.StatusInternalServerError)
		s.Logger.Error("ListAnchors failed", "err", err)
		return
	}

	out := make([]AnchorSummary, 0, len(anchors))
	for _, anchor := range anchors {
		sum := AnchorSummary{Anchor: anchor}
		state, err := s.load(r, anchor)
		switch {
		case errors.Is(err, domain.ErrAnchorNotFound):
			continue
		case errors.Is(err, domain.ErrCorruptBlob):
			sum.Corrupt = true
		case err != nil:
			http.Error(w, "Load error", http.StatusInternalServerError)
			s.Logger.Error("ListAnchors load failed", "anchor", anchor, "err", err)
			return
		default:
			sum.Strokes = len(state.Strokes)
			sum.Points = state.PointCount()
		}
		out = append(out, sum)
	}
	writeJSON(w, s.Logger, out)
}

// GetAnchor handles GET /anchors/{anchor} and returns the decoded session.
func (s *Server) GetAnchor(w http.ResponseWriter, r *http.Request) {
	anchor := chi.URLParam(r, "anchor")
	state, err := s.load(r, anchor)
	switch {
	case errors.Is(err, domain.ErrAnchorNotFound):
		http.Error(w, "Anchor not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrCorruptBlob):
		http.Error(w, "Anchor blob is corrupt", http.StatusUnprocessableEntity)
		s.Logger.Warn("GetAnchor: corrupt blob", "anchor", anchor, "err", err)
		return
	case err != nil:
		http.Error(w, "Load error", http.StatusInternalServerError)
		s.Logger.Error("GetAnchor failed", "anchor", anchor, "err", err)
		return
	}
	writeJSON(w, s.Logger, state)
}

// DeleteAnchor handles DELETE /anchors/{anchor}.
func (s *Server) DeleteAnchor(w http.ResponseWriter, r *http.Request) {
	anchor := chi.URLParam(r, "anchor")
	if err := s.Store.Delete(r.Context(), anchor); err != nil {
		http.Error(w, "Delete error", http.StatusInternalServerError)
		s.Logger.Error("DeleteAnchor failed", "anchor", anchor, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) load(r *http.Request, anchor string) (*domain.PenSessionState, error) {
	blob, err := s.Store.Load(r.Context(), anchor)
	if err != nil {
		return nil, err
	}
	return codec.Unmarshal(blob)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

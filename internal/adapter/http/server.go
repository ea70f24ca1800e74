package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/mapview"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

// OverlaySource serves the pre-rendered overlay image. ok is false until a
// raster has loaded.
type OverlaySource interface {
	PNG() ([]byte, bool)
}

// Server exposes the map API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	view       *mapview.View
	overlay    OverlaySource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, ready sharedobs.ReadinessChecker, view *mapview.View, overlay OverlaySource, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		view:    view,
		overlay: overlay,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/classify", s.handleClassify)
	mux.HandleFunc("GET /api/legend", s.handleLegend)
	mux.HandleFunc("GET /api/layers", s.handleLayers)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/overlay.png", s.handleOverlay)
	mux.HandleFunc("POST /api/click", s.handleClick)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("DELETE /api/marker", s.handleDismissMarker)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type classifyResponse struct {
	Value      float64 `json:"value"`
	Category   string  `json:"category"`
	Label      string  `json:"label"`
	Fill       *string `json:"fill"`
	PopupLabel string  `json:"popup_label"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")
	if raw == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing value parameter"))
		return
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid value %q", raw))
		return
	}

	category := domain.Classify(value)
	s.metrics.Classifications.WithLabelValues("api", category.Key).Inc()

	resp := classifyResponse{
		Value:      value,
		Category:   category.Key,
		Label:      category.Label,
		PopupLabel: domain.PopupLabel(value),
	}
	if fill, ok := domain.PixelFill(value); ok {
		resp.Fill = &fill
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		// encoding/json rejects non-finite numbers.
		resp.Value = 0
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Legend())
}

func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"base_layers": mapview.BaseLayers(),
		"overlay":     mapview.DEMOverlay,
	})
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.view.State())
}

func (s *Server) handleOverlay(w http.ResponseWriter, _ *http.Request) {
	b, ok := s.overlay.PNG()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, raster.ErrNotLoaded)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	if _, err := w.Write(b); err != nil {
		s.logger.Debug("overlay write failed", "error", err)
	}
}

type clickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, errors.New("lat and lng are required"))
		return
	}

	popup, ok := s.view.Click(*req.Lat, *req.Lng)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, popup)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view.Search(r.Context(), req.Query))
}

func (s *Server) handleDismissMarker(w http.ResponseWriter, _ *http.Request) {
	if !s.view.DismissMarker() {
		writeError(w, http.StatusNotFound, errors.New("no search marker"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

// Package http exposes the viewer over HTTP: the rendered map frame, hover
// resolution, date and mode controls, and the usual health and metrics
// endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wildfire-map-viewer/internal/app"
	"github.com/couchcryptid/wildfire-map-viewer/internal/classify"
	"github.com/couchcryptid/wildfire-map-viewer/internal/dates"
	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/couchcryptid/wildfire-map-viewer/internal/interact"
)

// Viewer is the application surface the HTTP layer drives.
type Viewer interface {
	Frame() ([]byte, error)
	Hover(x, y float64) (interact.Summary, bool)
	Legend() []classify.LegendEntry
	Dates() app.DateState
	SelectDate(t time.Time)
	SelectOffset(days int)
	SetMode(mode domain.DisplayMode)
	SetHazardsVisible(visible bool)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the viewer API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	viewer     Viewer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(addr string, viewer Viewer, logger *slog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		viewer: viewer,
		logger: logger,
	}

	router.HandleFunc("/map.png", s.handleFrame).Methods(http.MethodGet)
	router.HandleFunc("/hover", s.handleHover).Methods(http.MethodGet)
	router.HandleFunc("/legend", s.handleLegend).Methods(http.MethodGet)
	router.HandleFunc("/date", s.handleGetDate).Methods(http.MethodGet)
	router.HandleFunc("/date", s.handleSetDate).Methods(http.MethodPost)
	router.HandleFunc("/display", s.handleSetDisplay).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

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

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame, err := s.viewer.Frame()
	if err != nil {
		s.logger.Error("frame render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(frame)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y must be numbers"})
		return
	}

	summary, ok := s.viewer.Hover(x, y)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "nothing at position"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.viewer.Legend())
}

func (s *Server) handleGetDate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.viewer.Dates())
}

// handleSetDate accepts either a calendar date or a slider offset, the two
// views of the same selection.
func (s *Server) handleSetDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date   string `json:"date"`
		Offset *int   `json:"offset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	switch {
	case body.Date != "" && body.Offset != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "provide date or offset, not both"})
		return
	case body.Date != "":
		t, err := dates.ParseDate(body.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.viewer.SelectDate(t)
	case body.Offset != nil:
		s.viewer.SelectOffset(*body.Offset)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date or offset is required"})
		return
	}

	writeJSON(w, http.StatusOK, s.viewer.Dates())
}

func (s *Server) handleSetDisplay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode    string `json:"mode"`
		Hazards *bool  `json:"hazards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if body.Mode == "" && body.Hazards == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode or hazards is required"})
		return
	}

	if body.Mode != "" {
		mode, err := domain.ParseDisplayMode(body.Mode)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.viewer.SetMode(mode)
	}
	if body.Hazards != nil {
		s.viewer.SetHazardsVisible(*body.Hazards)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.viewer.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

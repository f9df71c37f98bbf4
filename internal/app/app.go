// Package app owns the viewer's mutable state: the current read-model, the
// selected display mode, the hazard toggle, and the date selection. All
// mutation funnels through one writer lock; the feed goroutine and HTTP
// handlers never touch the state directly.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wildfire-map-viewer/internal/classify"
	"github.com/couchcryptid/wildfire-map-viewer/internal/dates"
	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/couchcryptid/wildfire-map-viewer/internal/feed"
	"github.com/couchcryptid/wildfire-map-viewer/internal/interact"
	"github.com/couchcryptid/wildfire-map-viewer/internal/observability"
	"github.com/couchcryptid/wildfire-map-viewer/internal/readmodel"
)

// SnapshotRequester sends date requests upstream.
type SnapshotRequester interface {
	RequestSnapshot(unixSeconds int64)
}

// FrameRenderer draws a map frame for a model.
type FrameRenderer interface {
	Render(m readmodel.Model, mode domain.DisplayMode, showHazards bool) ([]byte, error)
}

// HoverResolver answers pointer queries against a model.
type HoverResolver interface {
	Resolve(m readmodel.Model, mode domain.DisplayMode, x, y float64) (interact.Summary, bool)
}

// ErrNoSnapshot is returned by CheckReadiness until the first snapshot lands.
var ErrNoSnapshot = errors.New("no snapshot received yet")

// Options wires an App's collaborators.
type Options struct {
	Projector readmodel.Projector
	Renderer  FrameRenderer
	Resolver  HoverResolver
	Requester SnapshotRequester
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// App is the single owner of viewer state.
type App struct {
	projector readmodel.Projector
	renderer  FrameRenderer
	resolver  HoverResolver
	requester SnapshotRequester
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu          sync.RWMutex
	model       readmodel.Model
	mode        domain.DisplayMode
	showHazards bool
	generation  uint64
	dates       *dates.Controller

	ready atomic.Bool
}

// New builds the app with an empty read-model, temperature mode, and hazard
// markers visible. The date controller starts at its ceiling.
func New(opts Options) *App {
	a := &App{
		projector:   opts.Projector,
		renderer:    opts.Renderer,
		resolver:    opts.Resolver,
		requester:   opts.Requester,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		mode:        domain.ModeTemperature,
		showHazards: true,
		model:       readmodel.Model{WeatherByRegion: map[string]domain.Record{}},
	}
	a.dates = dates.NewController(a.sendRequest)
	return a
}

// Start issues the initial snapshot request for the default date. Call once
// after the feed client is running.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sendRequest(a.dates.Date())
}

// sendRequest runs under the writer lock via the date controller's change
// callback (and Start).
func (a *App) sendRequest(t time.Time) {
	a.metrics.DateRequests.Inc()
	a.logger.Info("requesting snapshot", "date", t.Format("2006-01-02"))
	a.requester.RequestSnapshot(t.Unix())
}

// HandleSnapshot rebuilds the read-model from an arriving snapshot. Whatever
// arrives last wins, even if it answers a superseded request.
func (a *App) HandleSnapshot(snap domain.Snapshot, skipped int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	model, stats := readmodel.Build(snap, a.projector, a.generation)
	a.model = model

	a.metrics.SnapshotsReceived.Inc()
	a.metrics.SnapshotRecords.Observe(float64(len(snap.Records)))
	if skipped > 0 {
		a.metrics.RecordsDiscarded.WithLabelValues("parse").Add(float64(skipped))
	}
	for reason, n := range map[string]int{
		"no_coordinates": stats.NoCoordinates,
		"out_of_bounds":  stats.OutOfBounds,
		"off_canvas":     stats.OffCanvas,
		"no_size":        stats.NoSize,
	} {
		if n > 0 {
			a.metrics.RecordsDiscarded.WithLabelValues(reason).Add(float64(n))
		}
	}

	a.logger.Info("snapshot applied",
		"generation", a.generation,
		"records", len(snap.Records),
		"hazards", len(model.Hazards),
		"skipped", skipped,
		"discarded", stats.Discarded(),
	)
	a.ready.Store(true)
}

// HandleFeedState tracks connection lifecycle for metrics and logs.
func (a *App) HandleFeedState(s feed.State) {
	switch s {
	case feed.StateConnected:
		a.metrics.FeedConnects.Inc()
		a.metrics.FeedConnected.Set(1)
		a.logger.Info("feed connected")
	case feed.StateError:
		a.metrics.FeedErrors.Inc()
		a.metrics.FeedConnected.Set(0)
	case feed.StateDisconnected:
		a.metrics.FeedConnected.Set(0)
		a.logger.Error("feed permanently disconnected")
	}
}

// SetMode switches the measurement encoded as color.
func (a *App) SetMode(mode domain.DisplayMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = mode
}

// SetHazardsVisible toggles the marker overlay.
func (a *App) SetHazardsVisible(visible bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.showHazards = visible
}

// SelectDate moves the selection to a calendar date.
func (a *App) SelectDate(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dates.SetDate(t)
}

// SelectOffset moves the selection by day offset from the floor.
func (a *App) SelectOffset(days int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dates.SetOffset(days)
}

// DateState describes the current selection for the date endpoint.
type DateState struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Offset    int    `json:"offset"`
	MaxOffset int    `json:"max_offset"`
	Floor     string `json:"floor"`
	Ceiling   string `json:"ceiling"`
}

// Dates reports the selection and its valid range.
func (a *App) Dates() DateState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return DateState{
		Date:      a.dates.Date().Format("2006-01-02"),
		Label:     a.dates.Label(),
		Offset:    a.dates.Offset(),
		MaxOffset: a.dates.MaxOffset(),
		Floor:     a.dates.Floor().Format("2006-01-02"),
		Ceiling:   a.dates.Ceiling().Format("2006-01-02"),
	}
}

// Mode returns the active display mode.
func (a *App) Mode() domain.DisplayMode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Frame renders the current state as a PNG.
func (a *App) Frame() ([]byte, error) {
	a.mu.RLock()
	model, mode, hazards := a.model, a.mode, a.showHazards
	a.mu.RUnlock()

	start := time.Now()
	frame, err := a.renderer.Render(model, mode, hazards)
	if err != nil {
		return nil, err
	}
	a.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	return frame, nil
}

// Hover resolves the entity under a canvas position.
func (a *App) Hover(x, y float64) (interact.Summary, bool) {
	a.mu.RLock()
	model, mode := a.model, a.mode
	a.mu.RUnlock()

	s, ok := a.resolver.Resolve(model, mode, x, y)
	if ok {
		a.metrics.HoverRequests.WithLabelValues("hit").Inc()
	} else {
		a.metrics.HoverRequests.WithLabelValues("miss").Inc()
	}
	return s, ok
}

// Legend returns the active mode's bucket/color rows.
func (a *App) Legend() []classify.LegendEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return classify.LegendFor(a.mode)
}

// CheckReadiness reports ready once the first snapshot has been applied.
func (a *App) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return ErrNoSnapshot
	}
	return nil
}

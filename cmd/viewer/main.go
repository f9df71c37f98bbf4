// Command viewer serves the live wildfire and weather map: it follows the
// snapshot feed, keeps a rendered choropleth of the latest snapshot, and
// exposes the map plus its controls over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/wildfire-map-viewer/internal/adapter/http"
	"github.com/couchcryptid/wildfire-map-viewer/internal/app"
	"github.com/couchcryptid/wildfire-map-viewer/internal/config"
	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/couchcryptid/wildfire-map-viewer/internal/feed"
	"github.com/couchcryptid/wildfire-map-viewer/internal/geo"
	"github.com/couchcryptid/wildfire-map-viewer/internal/interact"
	"github.com/couchcryptid/wildfire-map-viewer/internal/observability"
	"github.com/couchcryptid/wildfire-map-viewer/internal/regions"
	"github.com/couchcryptid/wildfire-map-viewer/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	counties, err := geo.LoadFeatures(cfg.GeometryPath, cfg.GeometryObject)
	if err != nil {
		logger.Error("failed to load county geometry", "error", err, "path", cfg.GeometryPath)
		os.Exit(1)
	}
	states, err := geo.LoadFeatures(cfg.GeometryPath, cfg.StatesObject)
	if err != nil {
		// State borders are cosmetic; the map works without them.
		logger.Warn("state borders unavailable", "error", err)
		states = nil
	}

	proj := geo.NewAlbersUSA()
	set := regions.NewSet(counties, states, proj)
	logger.Info("geometry loaded", "counties", set.Len(), "borders", len(set.Borders()))

	names, err := loadNames(cfg, logger)
	if err != nil {
		logger.Error("failed to load region names", "error", err)
		os.Exit(1)
	}

	renderer := render.NewRenderer(set, render.Options{
		FontPath:    cfg.FontPath,
		CacheFrames: cfg.FrameCacheSize,
	})
	resolver := interact.NewResolver(set, names)

	// The feed handlers close over the app; the client only starts
	// delivering once Run is called below.
	var application *app.App
	feedClient, err := feed.New(feed.Options{
		Endpoint:     cfg.FeedEndpoint,
		InitialDelay: cfg.FeedRetryDelay,
		MaxDelay:     cfg.FeedRetryMaxDelay,
		MaxAttempts:  cfg.FeedRetryAttempts,
		PollTimeout:  cfg.FeedPollTimeout,
		Logger:       logger,
	}, feed.Handlers{
		OnSnapshot: func(snap domain.Snapshot, skipped int) { application.HandleSnapshot(snap, skipped) },
		OnState:    func(s feed.State) { application.HandleFeedState(s) },
	})
	if err != nil {
		logger.Error("failed to create feed client", "error", err)
		os.Exit(1)
	}

	application = app.New(app.Options{
		Projector: proj,
		Renderer:  renderer,
		Resolver:  resolver,
		Requester: feedClient,
		Logger:    logger,
		Metrics:   metrics,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, application, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := feedClient.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("feed stopped", "error", err)
		}
	}()

	application.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func loadNames(cfg *config.Config, logger *slog.Logger) (*regions.NameIndex, error) {
	switch {
	case cfg.RegionsDB != "":
		names, err := regions.OpenNamesDB(cfg.RegionsDB)
		if err != nil {
			return nil, err
		}
		logger.Info("region names loaded", "source", cfg.RegionsDB, "count", names.Len())
		return names, nil
	case cfg.RegionNamesCSV != "":
		names, err := regions.LoadNamesCSV(cfg.RegionNamesCSV)
		if err != nil {
			return nil, err
		}
		logger.Info("region names loaded", "source", cfg.RegionNamesCSV, "count", names.Len())
		return names, nil
	default:
		logger.Info("no region names source configured")
		return regions.EmptyNameIndex(), nil
	}
}

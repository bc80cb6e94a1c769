// Package server builds the application's dependencies and runs the HTTP
// server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/infotik/link-gateway/internal/api"
	"github.com/infotik/link-gateway/internal/config"
	"github.com/infotik/link-gateway/internal/device"
	gcsimages "github.com/infotik/link-gateway/internal/images/gcs"
	noopimages "github.com/infotik/link-gateway/internal/images/noop"
	urlimages "github.com/infotik/link-gateway/internal/images/urltemplate"
	"github.com/infotik/link-gateway/internal/logging"
	"github.com/infotik/link-gateway/internal/preview"
	"github.com/infotik/link-gateway/internal/render"
	"github.com/infotik/link-gateway/internal/telemetry"
)

// App contains the application's dependencies.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	apiServer *api.Server
	storage   *storage.Client
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	telemetry.Init()

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies")

	images, err := app.setupImages(ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := preview.NewResolver(
		&http.Client{Timeout: cfg.UpstreamTimeout()},
		images,
		preview.ResolverConfig{
			BaseURL:    cfg.Upstream.BaseURL,
			PostsPath:  cfg.Upstream.PostsPath,
			PulsesPath: cfg.Upstream.PulsesPath,
			APIKey:     cfg.Upstream.APIKey,
			Timeout:    cfg.UpstreamTimeout(),
		},
		logger.Named("resolver"),
	)
	if err != nil {
		return nil, fmt.Errorf("resolver init failed: %w", err)
	}

	renderer := render.New(render.Config{
		CanonicalBaseURL: cfg.Links.CanonicalBaseURL,
		TwitterDomain:    cfg.Links.TwitterDomain,
		Links: device.Links{
			WebsiteURL: cfg.Links.WebsiteURL,
			AppScheme:  cfg.Links.AppScheme,
			AppPackage: cfg.Links.AppPackage,
			StoreURL:   cfg.Links.StoreURL,
		},
	})

	app.apiServer = api.NewServer(resolver, renderer, *cfg, logger.Named("api"))
	return app, nil
}

// setupImages selects the thumbnail backend. Missing storage configuration
// degrades to the no-op source; a share page without an image beats no share
// page.
func (a *App) setupImages(ctx context.Context) (preview.ImageSource, error) {
	switch a.cfg.Thumbnails.Backend {
	case config.ThumbnailBackendGCS:
		a.logger.Info("using GCS thumbnail backend",
			zap.String("bucket", a.cfg.Thumbnails.Bucket))
		client, err := storage.NewClient(ctx)
		if err != nil {
			a.logger.Warn("gcs client init failed, thumbnails disabled", zap.Error(err))
			return noopimages.New(), nil
		}
		a.storage = client
		source, err := gcsimages.New(client, gcsimages.Config{
			Bucket: a.cfg.Thumbnails.Bucket,
		}, a.logger.Named("images"))
		if err != nil {
			return nil, fmt.Errorf("gcs image source init failed: %w", err)
		}
		return source, nil
	case config.ThumbnailBackendURL:
		a.logger.Info("using URL template thumbnail backend")
		source, err := urlimages.New(a.cfg.Thumbnails.URLTemplate)
		if err != nil {
			return nil, fmt.Errorf("url image source init failed: %w", err)
		}
		return source, nil
	default:
		a.logger.Info("thumbnails disabled")
		return noopimages.New(), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	return a.Close()
}

// Close gracefully shuts down the application.
func (a *App) Close() error {
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	if err := a.logger.Sync(); err != nil {
		// Sync to a terminal commonly fails; nothing useful to do.
		_ = err
	}
	return nil
}

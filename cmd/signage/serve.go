package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"kiosk-signage/internal/catalog"
	"kiosk-signage/internal/kiosk"
	"kiosk-signage/internal/layout"
	"kiosk-signage/internal/platform/config"
	"kiosk-signage/internal/platform/logger"
	"kiosk-signage/internal/platform/metrics"
	"kiosk-signage/internal/rotation"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the display page, catalog feed and media files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			log := ctx.newLogger(cfg)
			provider, err := ctx.newProvider(cfg, log)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, provider, log)
		},
	}
}

func runServer(parent context.Context, cfg *config.Config, provider *catalog.Provider, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	met := metrics.New()
	provider.OnScan(met.ObserveCatalogScan)

	var lister catalog.Lister = provider
	if cfg.Media.Watch {
		w, err := catalog.NewWatcher(cfg.Media.Dir(), provider, log)
		if err != nil {
			log.Warn("media watcher unavailable", slog.String("error", err.Error()))
		} else {
			defer w.Close()
			w.OnRescan(func(items int) {
				log.Debug("catalog rescanned", slog.Int("items", items))
			})
			lister = w
			go func() {
				// Run logs its own failure; List keeps rescanning uncached.
				_ = w.Run(ctx)
			}()
		}
	}

	svc, err := newKioskService(cfg, lister, provider.Strategy())
	if err != nil {
		return err
	}
	files := kiosk.MediaFiles{
		Dir:         cfg.Media.Dir(),
		Classifier:  provider.Classifier(),
		CenterImage: centerImagePath(cfg),
	}
	h := kiosk.NewHandler(svc, files, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(svc.ActiveSessionCount()) }).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("server starting",
		"port", cfg.Server.Port,
		"media_dir", cfg.Media.Dir(),
		"refresh_seconds", cfg.Display.RefreshSeconds,
		"policy", cfg.Display.Policy,
		"log_level", cfg.Server.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		log.Info("shutdown signal received, draining connections")
	case <-parent.Done():
		log.Info("context cancelled, draining connections")
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newKioskService(cfg *config.Config, lister catalog.Lister, strategy catalog.Strategy) (*kiosk.Service, error) {
	policy, err := rotation.ParsePolicy(cfg.Display.Policy)
	if err != nil {
		return nil, err
	}
	slots, err := layout.ParseSlots(cfg.Display.Slots)
	if err != nil {
		return nil, err
	}
	overflow, err := layout.ParseOverflow(cfg.Display.Overflow)
	if err != nil {
		return nil, err
	}
	return kiosk.NewService(kiosk.NewInMemoryRepository(), lister, kiosk.Options{
		RefreshSeconds: cfg.Display.RefreshSeconds,
		MirrorVideos:   cfg.Display.MirrorVideos,
		RequireAtLeast: cfg.Display.RequireAtLeast,
		CenterImage:    cfg.Display.StaticCenterImage,
		Strategy:       strategy,
		Policy:         policy,
		Slots:          slots,
		Overflow:       overflow,
		SessionTTL:     cfg.Display.SessionTTL(),
	}), nil
}

// centerImagePath resolves the configured banner; relative names live in
// the media root.
func centerImagePath(cfg *config.Config) string {
	name := cfg.Display.StaticCenterImage
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Media.Root, name)
}

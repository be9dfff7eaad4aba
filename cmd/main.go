package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/tubedesk/tubedesk/internal/auth"
	"github.com/tubedesk/tubedesk/internal/config"
	"github.com/tubedesk/tubedesk/internal/httpapi"
	"github.com/tubedesk/tubedesk/internal/persistence"
	"github.com/tubedesk/tubedesk/internal/remote"
	"github.com/tubedesk/tubedesk/internal/service"
	"github.com/tubedesk/tubedesk/pkg/log"
)

type scheduler interface {
	Schedule() error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

type schedulerFunc func() error

func (f schedulerFunc) Schedule() error { return f() }

// runWithComponents wires the prune schedule and the HTTP server and
// blocks until ctx is cancelled or the server fails.
func runWithComponents(ctx context.Context, cfg *config.Config, sched scheduler, engine cronEngine, srv httpServer) error {
	if err := sched.Schedule(); err != nil {
		return err
	}
	engine.Start()
	defer engine.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.HTTP.Addr)
		err := srv.ListenAndServe(cfg.HTTP.Addr)
		if err == http.ErrServerClosed {
			err = nil
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func main() {
	_ = godotenv.Load()

	log.InitLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))

	var opts []config.Option
	settingsPath := config.RuntimeSettingsFilePath()
	if saved, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		opts = append(opts, config.WithRuntimeSettings(saved))
	} else if !os.IsNotExist(err) {
		log.Warn("Ignoring runtime settings file %s: %v", settingsPath, err)
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	store, err := persistence.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal("Failed to open batch archive: %v", err)
	}
	defer store.Close()

	session := auth.NewSession(cfg.Backend.AccessToken, cfg.Backend.RefreshToken)
	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.Backend.APIURL,
		Timeout: time.Duration(cfg.Backend.Timeout) * time.Second,
	}, session, remote.WithOnExpire(func() {
		log.Warn("Backend session expired, re-authentication required")
	}))
	if err != nil {
		log.Fatal("Failed to build backend client: %v", err)
	}

	svc := service.New(cfg, client, store)

	settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		log.Fatal("Failed to init runtime settings store: %v", err)
	}

	server := httpapi.NewServer(svc,
		httpapi.WithUI(cfg.HTTP.UIStaticDir, cfg.HTTP.UIEnabled),
		httpapi.WithArchive(store),
		httpapi.WithRuntimeSettingsStore(settingsStore),
		httpapi.WithRuntimeSettingsApplier(func(next config.RuntimeSettings) error {
			if next.BackendAPIURL != cfg.Backend.APIURL {
				log.Warn("Backend URL change takes effect after restart")
			}
			if next.PruneCronExpr != cfg.Storage.PruneCronExpr {
				log.Warn("Prune schedule change takes effect after restart")
			}
			return svc.ApplySettings(next)
		}),
	)

	c := cron.New()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runWithComponents(ctx, cfg, schedulerFunc(func() error {
		return svc.Schedule(c, cfg.Storage.PruneCronExpr)
	}), c, server)
	if err != nil {
		log.Fatal("Server exited with error: %v", err)
	}
	log.Info("Shutdown complete")
}

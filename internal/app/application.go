// Package app wires the gateway's components together and owns their
// lifecycle. Initialization order follows the dependency chain:
// admission store → history → media → gateway → HTTP.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"chatgate/internal/admission"
	"chatgate/internal/api"
	"chatgate/internal/config"
	"chatgate/internal/gateway"
	"chatgate/internal/history"
	"chatgate/internal/media"
	"chatgate/internal/storage"
	"chatgate/pkg/interfaces"
)

// Application holds every long-lived component of a gateway process.
type Application struct {
	config     *config.Config
	admission  interfaces.AdmissionController
	registry   *gateway.Registry
	history    interfaces.ChatHistory
	historyDB  *history.SQLiteStore
	redis      *redis.Client
	httpServer *http.Server
}

// NewApplication builds and wires all components from the configuration.
func NewApplication(cfg *config.Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{config: cfg, registry: gateway.NewRegistry()}
	caps := admission.Caps{
		GlobalMax:    cfg.Admission.MaxConnections,
		PerClientMax: cfg.Admission.MaxConnectionsPerClient,
	}

	// Admission store: Redis when configured, otherwise process-local.
	if cfg.Redis.Addr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		ctrl, err := admission.NewRedisController(app.redis, cfg.Redis.Key, caps)
		if err != nil {
			return nil, err
		}
		app.admission = ctrl
	} else {
		log.Printf("no redis address configured, using in-process admission store")
		ctrl, err := admission.NewMemoryController(caps)
		if err != nil {
			return nil, err
		}
		app.admission = ctrl
	}

	// Transcript store: sqlite when a path is configured.
	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		app.historyDB = store
		app.history = store
	} else {
		app.history = history.NewMemoryStore()
	}

	blobs, err := storage.NewLocal(cfg.Media.StorageDir)
	if err != nil {
		app.closePartial()
		return nil, err
	}

	wsHandler := gateway.NewHandler(
		app.admission,
		app.history,
		media.NewSampler(cfg.Media.SampleDir),
		blobs,
		app.registry,
		gateway.Options{
			MaxFrameBytes: cfg.Limits.MaxFrameBytes,
			MaxFieldBytes: cfg.Limits.MaxFieldBytes,
			WriteTimeout:  cfg.Server.WriteTimeout,
		},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)
	api.NewServer(app.admission, app.registry).Register(mux)

	app.httpServer = &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
	}
	return app, nil
}

// Start clears stale admission counts left by a crashed process, then
// begins serving.
func (app *Application) Start(ctx context.Context) error {
	if err := app.admission.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset admission counts: %w", err)
	}

	log.Printf("chatgate listening on %s", app.httpServer.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the process down in reverse dependency order: stop
// accepting, end live sessions (each releases its slot), then close the
// stores.
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("shutting down chatgate")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}

	app.registry.CloseAll()

	// Give sessions a moment to finish teardown (each returns its
	// admission slot) before the stores go away underneath them.
	for app.registry.Count() > 0 {
		select {
		case <-ctx.Done():
			log.Printf("shutdown deadline reached with %d sessions still closing", app.registry.Count())
			app.closePartial()
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	app.closePartial()
	log.Printf("chatgate shutdown complete")
	return nil
}

func (app *Application) closePartial() {
	if app.historyDB != nil {
		if err := app.historyDB.Close(); err != nil {
			log.Printf("history store close error: %v", err)
		}
		app.historyDB = nil
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			log.Printf("redis client close error: %v", err)
		}
		app.redis = nil
	}
}

// Addr returns the listen address.
func (app *Application) Addr() string {
	return app.httpServer.Addr
}

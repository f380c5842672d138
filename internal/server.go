package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/simplenotes/internal/api"
	"github.com/starford/simplenotes/internal/notestore"
	"github.com/starford/simplenotes/internal/session"
	"github.com/starford/simplenotes/internal/sse"
)

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// newHTTPHandler builds the full HTTP handler: health checks plus the API
// and event stream under /api.
func newHTTPHandler(cfg *Config, svc *api.Service, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events))
	return r
}

func runServer(ctx context.Context, cfg *Config, c components) error {
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	store := notestore.Load(c.file,
		notestore.WithLogger(c.logger),
		notestore.WithCallback(broker.PublishNoteEvent))
	svc := api.NewService(session.New(store), c.exporter, c.exports)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Notes.Watch {
		g.Go(func() error {
			watchNotes(gCtx, store, c.logger, broker.PublishNoteEvent)
			return nil
		})
	}

	g.Go(func() error {
		c.logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			c.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			c.logger.Info("Context cancelled, initiating shutdown")
		}

		// Open event streams never finish on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			c.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}

// errShutdown cancels the errgroup so the watcher stops once the server
// has shut down.
var errShutdown = errors.New("shutdown")

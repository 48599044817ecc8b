// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/adrkit/internal/api"
	"github.com/starford/adrkit/internal/catalog"
	"github.com/starford/adrkit/internal/mcpserver"
	"github.com/starford/adrkit/internal/record"
	"github.com/starford/adrkit/internal/sse"
	"github.com/starford/adrkit/internal/storage"
)

// NewRecordService opens the repository described by cfg for one-shot
// record operations.
func NewRecordService(cfg *Config, logger *slog.Logger) (*record.Service, error) {
	store, err := storage.NewFS(cfg.Repo.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return record.NewService(store, record.WithLogger(logger)), nil
}

// runtime is the long-lived state shared by serve and mcp.
type runtime struct {
	store   storage.Provider
	db      *catalog.DB
	records *record.Service
	dir     string
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// open prepares storage, the decision log directory and the catalog. hooks
// run after every record write, next to the catalog refresher.
func (a *application) open(hooks ...record.Hook) (*runtime, error) {
	cfg, logger := a.config, a.logger

	store, err := storage.NewFS(cfg.Repo.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	dir, err := record.ResolveDir(store, cfg.Repo.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve ADR dir: %w", err)
	}
	if err := store.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("create ADR dir: %w", err)
	}

	dbPath := cfg.CatalogPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := catalog.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	if err := catalog.Sync(db, store, dir, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	opts := []record.Option{
		record.WithLogger(logger),
		record.WithHook(catalog.Refresher(db, store, logger)),
	}
	for _, h := range hooks {
		opts = append(opts, record.WithHook(h))
	}
	return &runtime{
		store:   store,
		db:      db,
		records: record.NewService(store, opts...),
		dir:     dir,
	}, nil
}

// Run starts the HTTP server, the catalog watcher and the SSE broker with
// the given options, and blocks until ctx is cancelled or a signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("repo_root", cfg.Repo.Root),
		slog.String("catalog_path", cfg.CatalogPath()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2*time.Second, record.IsIndexName)
	defer broker.Close()

	// The watcher reports record files; index files are skipped there and
	// published from the write hook instead.
	publishIndex := func(kind, p string) {
		if record.IsIndexName(path.Base(p)) {
			broker.PublishRecordEvent(kind, p)
		}
	}

	rt, err := app.open(publishIndex)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	svc := api.NewService(rt.records, rt.db, cfg.Defaults())
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ok, err := rt.store.Exists(rt.dir); err != nil || !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return catalog.Watch(gCtx, rt.db, rt.store, rt.dir, logger, broker.PublishRecordEvent)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdin/stdout until the client
// disconnects. Logs go to stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}

	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	app.logger.Info("MCP server starting", slog.String("repo_root", rt.store.Root()), slog.String("dir", rt.dir))
	srv := mcpserver.New(rt.records, rt.db, app.config.Defaults(), app.version)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

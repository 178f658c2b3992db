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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lngkit/internal/api"
	"github.com/starford/lngkit/internal/index"
	"github.com/starford/lngkit/internal/langservice"
	"github.com/starford/lngkit/internal/mcpserver"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/sse"
	"github.com/starford/lngkit/internal/storage"
	"github.com/starford/lngkit/internal/translator"
)

// components are the pieces shared by the HTTP and MCP entry points.
type components struct {
	store      *storage.FS
	db         *index.DB
	svc        *langservice.Service
	parserOpts []parser.Option
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// bootstrap opens the languages directory and the index and runs the
// initial sync. The caller closes db.
func (a *application) bootstrap() (*components, error) {
	cfg := a.config
	logger := a.logger

	if err := os.MkdirAll(cfg.Languages.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create languages dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Languages.Path, cfg.Languages.Extension)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	parserOpts := cfg.Parser.Options(logger)

	if err := index.Sync(db, store, logger, parserOpts...); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &components{
		store:      store,
		db:         db,
		svc:        langservice.NewService(store, db, logger, parserOpts...),
		parserOpts: parserOpts,
	}, nil
}

// Run starts the HTTP server, the file watcher and the event broker.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("languages_path", cfg.Languages.Path),
		slog.String("extension", cfg.Languages.Extension),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Int("max_passes", cfg.Parser.MaxPasses),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer c.db.Close()

	tr := translator.New(c.store,
		translator.WithLogger(logger),
		translator.WithParserOptions(c.parserOpts...))
	if code, err := tr.SetPreferred(cfg.Languages.Default, translator.DetectLanguage()); err != nil {
		logger.Warn("no active language loaded",
			slog.String("default", cfg.Languages.Default),
			slog.String("error", err.Error()))
	} else {
		logger.Info("Active language", slog.String("code", code), slog.String("name", tr.LanguageName()))
	}

	broker := sse.NewBroker(sse.WithHeartbeat(30 * time.Second))
	defer broker.Close()

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, api.WithTranslator(tr))

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := c.svc.Languages(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
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
		return index.Watch(gCtx, c.db, c.store, logger, func(kind, code string) {
			broker.PublishLanguageEvent(kind, code)
			if code == tr.Language() {
				if err := tr.Reload(); err != nil {
					logger.Warn("reload active language failed",
						slog.String("code", code),
						slog.String("error", err.Error()))
				}
			}
		}, c.parserOpts...)
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

// errShutdown cancels the group once the server has been shut down, so the
// watcher exits as well.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio. The file watcher keeps the index
// current while the session is open.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	c, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer c.db.Close()

	srv := mcpserver.New(c.svc, app.version)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return index.Watch(gCtx, c.db, c.store, app.logger, nil, c.parserOpts...)
	})
	g.Go(func() error {
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/itam/internal/api"
	"github.com/starford/itam/internal/inventory"
	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/mcpserver"
	"github.com/starford/itam/internal/models"
	"github.com/starford/itam/internal/session"
	"github.com/starford/itam/internal/sse"
	"github.com/starford/itam/internal/store"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openService opens the database and builds the service over it.
func (a *application) openService() (*itamservice.Service, *store.DB, error) {
	db, err := store.Open(a.config.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	return itamservice.NewService(db, a.config.Auth.TokenTTL), db, nil
}

// Run starts the HTTP server, the SSE broker and the inventory watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("api_path", cfg.App.HTTP.MountPath()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("inventory_enabled", cfg.Inventory.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, err := app.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	if created, err := svc.BootstrapAdmin(ctx, cfg.Auth.Bootstrap.Username, cfg.Auth.Bootstrap.Password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	} else if created {
		logger.Info("Bootstrap admin created", slog.String("username", cfg.Auth.Bootstrap.Username))
	}

	broker := sse.NewBroker(cfg.Events.StatsThrottle)
	defer broker.Close()
	svc.OnChange(broker.PublishRecordEvent)

	var invDir *inventory.Dir
	if cfg.Inventory.Enabled {
		if err := os.MkdirAll(cfg.Inventory.Path, 0o755); err != nil {
			return fmt.Errorf("create inventory dir: %w", err)
		}
		if invDir, err = inventory.OpenDir(cfg.Inventory.Path); err != nil {
			return fmt.Errorf("init inventory: %w", err)
		}
		rep, err := inventory.Sync(ctx, invDir, svc, db, logger)
		if err != nil {
			logger.Warn("initial inventory sync failed", slog.String("error", err.Error()))
		} else {
			logger.Info("Inventory synced",
				slog.Int("files", rep.Files), slog.Int("created", rep.Created),
				slog.Int("updated", rep.Updated), slog.Int("failed", rep.Failed))
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.Stats(session.WithIdentity(r.Context(), itamservice.SystemIdentity)); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		healthOK(w, r)
	})

	r.Mount(cfg.App.HTTP.MountPath(), api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.List.PageSize, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if invDir != nil {
		g.Go(func() error {
			return inventory.Watch(gCtx, invDir, svc, db, logger)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
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

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr unless
// redirected, since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	svc, db, err := app.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Starting MCP server", slog.String("sqlite_path", app.config.SQLite.Path))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// NewUser describes an account created from the command line.
type NewUser struct {
	Username string
	Password string
	Email    string
	Fullname string
	Admin    bool
}

// AddUser creates an account directly in the database with the system
// identity, so it also works before any admin exists.
func AddUser(ctx context.Context, u NewUser, out io.Writer, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(io.Discard)}, opts...))
	if err != nil {
		return err
	}
	svc, db, err := app.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	role := session.RoleUser
	if u.Admin {
		role = session.RoleAdmin
	}
	in := models.UserCreate{Username: u.Username, Password: u.Password, Role: &role}
	if u.Email != "" {
		in.Email = &u.Email
	}
	if u.Fullname != "" {
		in.Fullname = &u.Fullname
	}
	created, err := svc.CreateUser(session.WithIdentity(ctx, itamservice.SystemIdentity), in)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "created user %q (id %d, role %s)\n", created.Username, created.ID, created.Role)
	return err
}

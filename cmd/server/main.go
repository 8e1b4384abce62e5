// winlog - daily physical and social wins, logged to a Google Sheet
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/winlog/internal/api"
	"github.com/ashureev/winlog/internal/config"
	"github.com/ashureev/winlog/internal/extract"
	"github.com/ashureev/winlog/internal/identity"
	"github.com/ashureev/winlog/internal/middleware"
	"github.com/ashureev/winlog/internal/session"
	"github.com/ashureev/winlog/internal/sheets"
	"github.com/ashureev/winlog/internal/store"
	"github.com/ashureev/winlog/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "provider", cfg.Extract.Provider, "sheet", cfg.Sheets.SheetName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	extractor, err := extract.New(cfg.Extract)
	if err != nil {
		slog.Error("Failed to initialize extractor", "error", err)
		os.Exit(1)
	}

	appender, err := sheets.NewAppender(ctx, cfg.Sheets)
	if err != nil {
		slog.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	var sink session.Sink = appender
	var repo store.Repository
	if cfg.JournalEnabled() {
		journal, err := store.NewSQLite(cfg.JournalDBPath)
		if err != nil {
			slog.Error("Failed to initialize journal database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := journal.Close(); closeErr != nil {
				slog.Error("Failed to close journal", "error", closeErr)
			}
		}()
		if err := journal.Ping(ctx); err != nil {
			slog.Error("Journal health check failed", "error", err)
			os.Exit(1)
		}
		repo = journal
		sink = store.NewJournalSink(appender, journal)
		slog.Info("Commit journal enabled", "path", cfg.JournalDBPath)
	}

	sessions := session.NewMemoryStore()
	acc := session.NewAccumulator(sessions, sink, func() time.Time { return time.Now().In(cfg.Location) })
	session.StartSweeper(ctx, sessions, cfg.Session.TTL, cfg.Session.SweepInterval)

	winsHandler := api.NewHandler(extractor, acc, repo, cfg.EntriesLimit)

	if cfg.PageClientKey != "" {
		slog.Warn("PAGE_CLIENT_KEY is embedded in the public home page; use a short-lived, domain-restricted key")
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(identity.Middleware())

	r.Method(http.MethodGet, "/", web.HomeHandler(web.PageData{ClientKey: cfg.PageClientKey}))
	winsHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Extract.Timeout + cfg.Sheets.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...", "pending_sessions", sessions.Len())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

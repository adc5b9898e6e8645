// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confcentral/confcentral/internal/cache"
	"github.com/confcentral/confcentral/internal/config"
	"github.com/confcentral/confcentral/internal/database"
	"github.com/confcentral/confcentral/internal/handler"
	"github.com/confcentral/confcentral/internal/service"
	"github.com/confcentral/confcentral/internal/store"
	"github.com/confcentral/confcentral/internal/tasks"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Connect to PostgreSQL and migrate ─────────────────────────────
	pool, err := database.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Connected to PostgreSQL")

	if err := database.Migrate(cfg.DatabaseURL()); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("✓ Schema up to date")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	st := store.NewPostgres(pool)
	derived := cache.New()
	dispatcher := tasks.NewDispatcher(cfg.TaskURL, cfg.TaskQueueSize)
	defer dispatcher.Close()

	profiles := service.NewProfiles(st)
	conferences := service.NewConferences(st, derived, dispatcher, profiles)
	registrar := service.NewRegistrar(st, profiles, conferences)
	sessions := service.NewSessions(st, derived, dispatcher)

	api := handler.NewAPI(conferences, registrar, sessions, profiles)

	// Seed the announcement so reads are warm from the first request.
	if _, err := conferences.RecomputeAnnouncement(ctx); err != nil {
		log.Printf("announcement recompute: %v", err)
	}

	// ── 3. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.Router(api, []byte(cfg.JWTSecret)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

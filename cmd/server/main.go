// cmd/server/main.go
// This is the entry point for the match-play league API server.
// The cmd/ folder holds executable binaries, and internal/ holds the packages they are
// built from, which are not meant to be imported by other projects.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// adaptor lets Fiber serve a plain net/http handler (the Prometheus exporter)
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	// cors allows the mobile app to talk to the API from a different origin
	"github.com/gofiber/fiber/v2/middleware/cors"
	// logger prints request details (method, path, status, duration)
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trentd187/matchplay-league/internal/config"
	"github.com/trentd187/matchplay-league/internal/database"
	"github.com/trentd187/matchplay-league/internal/handlers"
	"github.com/trentd187/matchplay-league/internal/logger"
	"github.com/trentd187/matchplay-league/internal/metrics"
	"github.com/trentd187/matchplay-league/internal/services"
	"github.com/trentd187/matchplay-league/internal/store"
	"github.com/trentd187/matchplay-league/internal/websocket"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)
	// Handlers log unexpected errors through the default logger
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Apply pending SQL migrations so the schema is in sync before serving traffic
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := services.New(store.New(db), log, m, services.WithHandicapWorkers(cfg.HandicapWorkers))

	// The Hub tracks every live websocket client, grouped by match
	hub := websocket.NewHub(log, m.LiveClients)
	go hub.Run()

	app := fiber.New(fiber.Config{
		AppName: "Match Play League API",
	})

	// --- Global middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	// In production, lock CORS down to the app's own domain
	app.Use(cors.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if err := handlers.Register(app, handlers.Deps{
		Config:  cfg,
		DB:      db,
		Service: svc,
		Hub:     hub,
		Log:     log,
	}); err != nil {
		log.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
		hub.Stop()
	}
}

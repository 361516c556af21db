package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/practicepulse/backend/internal/api"
	"github.com/practicepulse/backend/internal/cache"
	"github.com/practicepulse/backend/internal/config"
	"github.com/practicepulse/backend/internal/metrics"
	"github.com/practicepulse/backend/internal/storage"
	"github.com/practicepulse/backend/internal/websocket"
	"github.com/practicepulse/backend/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Int("working_days_per_month", cfg.WorkingDaysPerMonth).
		Msg("starting practicepulse backend server")

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger.With().Str("component", "websocket").Logger())
	go hub.Run()

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create result store (DynamoDB or noop depending on DYNAMO_MODE)
	store, err := storage.NewStore(ctx, log.Logger.With().Str("component", "storage").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}

	// Create result cache
	resultCache := cache.NewResultCache()

	// Create WebSocket handler
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger.With().Str("component", "websocket").Logger())

	// Create API handlers
	handlers := api.NewHandlers(store, resultCache, hub, cfg, log.Logger.With().Str("component", "api").Logger())

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes
	r.Get("/health", healthHandler)
	r.Get("/ws", wsHandler.ServeHTTP)

	// Internal routes (uploads, computed results, app metrics)
	r.Route("/internal", func(r chi.Router) {
		r.Get("/metrics", metrics.Get().Handler())
		r.Post("/datasets/triage", handlers.HandleTriageUpload)
		r.Post("/datasets/appointments", handlers.HandleAppointmentsUpload)
		r.Get("/snapshots", handlers.HandleListSnapshots)
		r.Get("/snapshots/latest", handlers.HandleLatestSnapshot)
		r.Get("/snapshots/{id}", handlers.HandleGetSnapshot)
		r.Get("/cohorts/{id}", handlers.HandleGetCohort)
		r.Post("/workforce/capacity", handlers.HandleCapacity)
		r.Post("/benchmark/percentile", handlers.HandlePercentile)
		r.Post("/benchmark/trend", handlers.HandleTrend)
		r.Delete("/admin/results", handlers.HandleWipeStore)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"practicepulse-backend"}`)
}

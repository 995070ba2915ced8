package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/folio/internal/api"
	"github.com/eldtechnologies/folio/internal/auth"
	"github.com/eldtechnologies/folio/internal/config"
	"github.com/eldtechnologies/folio/internal/handlers"
	"github.com/eldtechnologies/folio/internal/mail"
	"github.com/eldtechnologies/folio/internal/provision"
	"github.com/eldtechnologies/folio/internal/store"
	"github.com/eldtechnologies/folio/internal/web"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}

	ctx := context.Background()

	// Open the work store (PostgreSQL with migrations, or SQLite)
	dataStore, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("store connection failed")
	}
	defer dataStore.Close()
	logger.Info().Msg("store ready")

	// Initialize Redis store
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	if cfg.AdminID != "" {
		created, err := provision.EnsureAdmin(ctx, dataStore, cfg.AdminID, cfg.AdminPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("admin bootstrap failed")
		}
		if created {
			logger.Info().Str("admin_id", cfg.AdminID).Msg("admin account created")
		}
	}

	// Mail relay
	dialer := &mail.SMTPDialer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, StartTLS: cfg.SMTPStartTLS}
	dispatcher := mail.NewDispatcher(dialer, cfg.Email, cfg.EmailSecret, logger)
	relay := mail.NewRelay(dispatcher, mail.RelayConfig{
		RecipientName: cfg.ContactName,
		FromName:      cfg.ContactFromName,
	})
	defer relay.Close()

	views, err := web.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("template parsing failed")
	}

	sessionCfg := auth.SessionConfig{
		Secret: cfg.SessionKey,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	}
	if redisStore != nil {
		sessionCfg.Revoker = redisStore
	}
	sessions := auth.NewSessions(sessionCfg, logger)

	h := handlers.NewHandler(handlers.Options{
		Store:      dataStore,
		Redis:      redisStore,
		Relay:      relay,
		Sessions:   sessions,
		Views:      views,
		Logger:     logger,
		LoginPath:  cfg.LoginPath,
		ResumePath: cfg.ResumePath,
	})

	// Create router
	router := api.NewRouter(logger, h, sessions, cfg.LoginPath)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting folio server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

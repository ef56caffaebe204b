package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warelabs/warelay/internal/api"
	"github.com/warelabs/warelay/internal/api/middleware"
	"github.com/warelabs/warelay/internal/chat"
	"github.com/warelabs/warelay/internal/config"
	"github.com/warelabs/warelay/internal/handlers"
	"github.com/warelabs/warelay/internal/twilio"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

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
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	// Outbound clients
	chatClient := chat.NewHTTPClient(cfg.ChatAPIURL, cfg.InternalAPIKey, cfg.ChatAPITimeout)
	twilioClient := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioTimeout)

	h := handlers.NewHandler(chatClient, twilioClient, cfg.TwilioWhatsAppNumber, logger)

	// Optional webhook protections
	opts := api.Options{MaxBodyBytes: cfg.MaxBodyBytes}
	if cfg.PublicBaseURL != "" {
		validator := twilio.NewRequestValidator(cfg.TwilioAuthToken)
		opts.TwilioAuth = middleware.NewTwilioAuth(validator, cfg.PublicBaseURL, logger)
		logger.Info().
			Str("public_base_url", cfg.PublicBaseURL).
			Msg("webhook signature validation enabled")
	} else {
		logger.Warn().Msg("PUBLIC_BASE_URL not set, webhook signatures are not validated")
	}
	if cfg.RateLimitPerMinute > 0 {
		opts.RateLimiter = middleware.NewSenderLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
		logger.Info().
			Int("per_minute", cfg.RateLimitPerMinute).
			Int("burst", cfg.RateLimitBurst).
			Msg("per-sender rate limiting enabled")
	}

	// Create router
	router := api.NewRouter(logger, h, opts)

	// The webhook may spend up to both upstream timeouts before writing.
	writeTimeout := cfg.ChatAPITimeout + cfg.TwilioTimeout + 5*time.Second

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting warelay server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

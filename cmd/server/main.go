package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxrelay/tts-gateway/internal/auth"
	"github.com/voxrelay/tts-gateway/internal/config"
	"github.com/voxrelay/tts-gateway/internal/observability"
	"github.com/voxrelay/tts-gateway/internal/server"
	"github.com/voxrelay/tts-gateway/internal/tts"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("region", cfg.Region).
		Bool("credentials_configured", cfg.HasCredentials()).
		Bool("using_free_tts", cfg.UsingFreeTTS()).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("TTS Gateway starting")

	upstreamTimeout := time.Duration(cfg.UpstreamTimeout) * time.Second

	// The token cache is the single process-wide holder of the Azure
	// bearer token, shared by the synthesis and voice-listing paths.
	tokens := auth.NewTokenCache(cfg.SpeechKey, cfg.Region, upstreamTimeout)

	primary := tts.NewAzureSynthesizer(tokens, cfg.Region, upstreamTimeout)
	fallback := tts.NewGoogleTranslateSynthesizer(upstreamTimeout)

	gateway := server.New(cfg, primary, fallback, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      gateway.Handler(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arbilens/backend/config"
	httpDelivery "github.com/arbilens/backend/internal/delivery/http"
	"github.com/arbilens/backend/internal/infrastructure/cache"
	"github.com/arbilens/backend/internal/infrastructure/catalog"
	"github.com/arbilens/backend/internal/infrastructure/serpapi"
	"github.com/arbilens/backend/internal/logger"
	"github.com/arbilens/backend/internal/usecase"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	}).Info("Starting ArbiLens Backend v1.0.0")

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	serpClient := serpapi.NewClient(serpapi.Config{
		BaseURL:      cfg.SerpAPI.BaseURL,
		Engine:       cfg.SerpAPI.Engine,
		GoogleDomain: cfg.SerpAPI.GoogleDomain,
		Country:      cfg.SerpAPI.Country,
		Language:     cfg.SerpAPI.Language,
		Timeout:      cfg.SerpAPI.Timeout,
	}, log)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		serpClient.SetDebug(true)
		log.Debug("SerpApi client debug mode enabled")
	}

	if cfg.SerpAPI.APIKey == "" {
		log.Warn("SerpApi key not configured: requests must supply one or every lookup will report missing_credential")
	}

	// Initialize usecase layer
	fetcher := usecase.NewOfferFetcher(serpClient, usecase.OfferFetcherConfig{
		ResultHint:        cfg.SerpAPI.ResultHint,
		TopN:              cfg.Research.TopN,
		ExcludedMerchants: cfg.Research.ExcludedMerchants,
	}, log)

	research := usecase.NewResearchService(
		memoryCache,
		fetcher,
		usecase.NewCalculatorFromFloats(cfg.Pricing.BufferRate, cfg.Pricing.ReferralRate),
		serpClient,
		usecase.ResearchServiceConfig{
			APIKey:      cfg.SerpAPI.APIKey,
			PacingDelay: cfg.Research.PacingDelay,
			MaxSessions: cfg.Research.MaxSessions,
		},
		log,
	)

	log.WithFields(logrus.Fields{
		"top_n":         cfg.Research.TopN,
		"pacing":        cfg.Research.PacingDelay.String(),
		"buffer_rate":   cfg.Pricing.BufferRate,
		"referral_rate": cfg.Pricing.ReferralRate,
		"excluded":      cfg.Research.ExcludedMerchants,
	}).Info("Research pipeline configured")

	handler := httpDelivery.NewHandler(research, catalog.NewLoader(log), log)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, fmt.Sprintf(":%s", cfg.Server.Port), router, log); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped")
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, addr string, handler http.Handler, log logrus.FieldLogger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

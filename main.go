// Package main runs the thrift matcher HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"thrift-matcher/internal/analysis"
	"thrift-matcher/internal/api"
	"thrift-matcher/internal/classifier"
	"thrift-matcher/internal/config"
	"thrift-matcher/internal/logging"
	"thrift-matcher/internal/version"
	"thrift-matcher/internal/wardrobe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		File:   cfg.Logging.File,
		Output: os.Stderr,
	})
	logging.Info().Str("version", version.String()).Msg("Starting thrift matcher")

	store, err := openStore(cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open wardrobe store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close wardrobe store")
		}
	}()

	analyzer := analysis.NewAnalyzer(newClassifier(cfg.Classifier),
		analysis.WithMinConfidence(float64(cfg.Analysis.MinConfidence)),
		analysis.WithExtractOptions(analysis.ExtractOptions{
			Margin:       cfg.Analysis.Margin,
			Iterations:   cfg.Analysis.Iterations,
			Clusters:     cfg.Analysis.Clusters,
			MaxDimension: cfg.Analysis.MaxDimension,
		}),
	)

	handler := api.NewHandler(analyzer, store,
		api.WithAllowUncertain(cfg.Analysis.AllowUncertain),
		api.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
	)
	mwCfg := api.DefaultMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Server.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Server.RateLimitWindow

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, mwCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func openStore(cfg config.StorageConfig) (wardrobe.Repository, error) {
	if cfg.Driver == "badger" {
		logging.Info().Str("path", cfg.Path).Msg("Opening badger wardrobe store")
		store, err := wardrobe.OpenBadger(cfg.Path, false)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	logging.Warn().Msg("Using in-memory wardrobe store; items are lost on restart")
	return wardrobe.NewMemoryStore(), nil
}

func newClassifier(cfg config.ClassifierConfig) classifier.Classifier {
	if cfg.URL == "" {
		logging.Warn().Msg("No classifier configured; only uploads with a category override will be analyzed")
		return nil
	}
	return classifier.NewHTTPClassifier(cfg.URL, classifier.HTTPOptions{
		Timeout:          cfg.Timeout,
		FailureThreshold: uint32(cfg.FailureThreshold),
		OpenTimeout:      cfg.OpenTimeout,
		Scale:            classifier.ConfidenceScale(cfg.ConfidenceScale),
	})
}

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

	"github.com/go-chi/jwtauth"
	"github.com/rs/zerolog"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
	"github.com/tendant/simple-cms/pkg/simplecms/worker"
	workerkafka "github.com/tendant/simple-cms/pkg/simplecms/worker/kafka"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load server configuration")
	}
	if cfg.Environment == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	svc, err := cfg.BuildService(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build service")
	}

	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}
	tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.NewRouter(svc, tokenAuth, logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerDone := startWorker(ctx, cfg, svc, logger)

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("database", cfg.DatabaseType).
			Str("search", cfg.SearchType).
			Msg("simple-cms server starting")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	// Stop the worker first so no saves race the HTTP drain.
	cancel()
	if workerDone != nil {
		<-workerDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server exited")
}

// startWorker runs the upload-event worker when brokers are configured.
// It returns a channel closed when the worker loop has exited.
func startWorker(ctx context.Context, cfg *config.ServerConfig, svc simplecms.Service, logger zerolog.Logger) <-chan struct{} {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Info().Msg("no kafka brokers configured, upload worker disabled")
		return nil
	}

	consumer := workerkafka.New(brokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	w := worker.New(consumer, svc,
		worker.WithLogger(logger.With().Str("component", "upload-worker").Logger()),
		worker.WithBackoff(cfg.WorkerBackoff),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("upload worker stopped")
		}
	}()
	return done
}

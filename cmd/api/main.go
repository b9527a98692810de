package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stylizer/internal/http/handlers"
	httpapi "stylizer/internal/http/httpapi"
	"stylizer/internal/infra"
	"stylizer/internal/profile"
	"stylizer/internal/scheduler"
	"stylizer/internal/storage"
	"stylizer/internal/transform"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewFileStore(cfg.ResultsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	sched := scheduler.New(scheduler.Options{
		MaxQueueSize:      cfg.MaxQueueSize,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
		JobTimeout:        cfg.JobTimeout,
		ResultTTL:         cfg.ResultTTL,
	})

	pool := scheduler.NewPool(sched, transform.NewStylizer(), store, logger)
	pool.Start(ctx)

	sweeper := scheduler.NewSweeper(sched, store, cfg.CleanupInterval, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start sweeper")
	}

	app := handlers.NewApp(cfg, logger, sched, store, profile.NewCatalog(cfg.ProfilesFile))
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	sweeper.Stop()
	if err := pool.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker pool stopped with error")
	}
	logger.Info().Msg("server stopped")
}

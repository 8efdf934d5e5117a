package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/sahayak/sahayak-sync/internal/api/http"
	appSubmission "github.com/sahayak/sahayak-sync/internal/application/submission"
	appTracking "github.com/sahayak/sahayak-sync/internal/application/tracking"
	"github.com/sahayak/sahayak-sync/internal/config"
	"github.com/sahayak/sahayak-sync/internal/domain/profile"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
	"github.com/sahayak/sahayak-sync/internal/infrastructure/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	submissionRepo := postgres.NewSubmissionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// demo seed so profile_update items have a target
	if err := userRepo.Create(ctx, &profile.Profile{UserID: "demo-user", Name: "Demo User"}); err != nil {
		logger.Warn().Err(err).Msg("failed to seed demo user")
	}

	// services
	submissionSvc := appSubmission.NewService(submissionRepo, userRepo, logger)
	trackingSvc := appTracking.NewService(submissionRepo, logger)

	apiServer := httpapi.NewServer(submissionSvc, trackingSvc, workflow.BuiltinCatalog(), logger)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("server stopped")
}

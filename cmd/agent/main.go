// The agent is the device-side half of the engine: local SQLite store,
// sync queue, connectivity monitor and session manager. It runs a
// scripted aadhaar application so the offline-to-online flow can be
// exercised end to end against a running server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahayak/sahayak-sync/internal/api/client"
	appSession "github.com/sahayak/sahayak-sync/internal/application/session"
	"github.com/sahayak/sahayak-sync/internal/application/syncqueue"
	"github.com/sahayak/sahayak-sync/internal/collaborators"
	"github.com/sahayak/sahayak-sync/internal/config"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
	"github.com/sahayak/sahayak-sync/internal/infrastructure/connectivity"
	"github.com/sahayak/sahayak-sync/internal/infrastructure/sqlite"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	store, err := sqlite.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer store.Close()

	queueRepo := sqlite.NewQueueRepository(store)
	recordRepo := sqlite.NewRecordRepository(store)
	settingsRepo := sqlite.NewSettingsRepository(store)

	syncClient := client.New(cfg.ServerURL, cfg.RequestTimeout)
	probe := connectivity.HTTPProbe(cfg.ServerURL+"/healthz", 5*time.Second)

	var monitor *connectivity.Monitor
	queueSvc := syncqueue.NewService(queueRepo, recordRepo, settingsRepo, syncClient, cfg.DeviceID, syncqueue.Options{
		MaxAttempts:    cfg.MaxAttempts,
		RequestTimeout: cfg.RequestTimeout,
		Online:         func() bool { return monitor != nil && monitor.Online() },
	}, logger)
	monitor = connectivity.NewMonitor(probe, queueSvc, cfg.ProbeInterval, cfg.DrainSchedule, logger)

	ctx := context.Background()
	if err := monitor.Start(ctx); err != nil {
		log.Fatalf("monitor error: %v", err)
	}
	defer monitor.Stop()

	sessions := appSession.NewService(workflow.BuiltinCatalog(), queueSvc, recordRepo, &collaborators.StubExtractor{}, logger)
	if err := runDemoSession(ctx, sessions); err != nil {
		logger.Error().Err(err).Msg("demo session failed")
	}

	counts, lastSync, _ := queueSvc.Status(ctx)
	logger.Info().
		Int("outstanding", counts.Outstanding()).
		Interface("last_sync", lastSync).
		Msg("agent running, queue will drain on connectivity")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("agent stopped")
}

// runDemoSession walks the aadhaar workflow the way the guided UI would.
func runDemoSession(ctx context.Context, sessions *appSession.Service) error {
	if _, err := sessions.Start("aadhaar-application"); err != nil {
		return err
	}
	// step 1: info
	if _, err := sessions.Advance(ctx); err != nil {
		return err
	}
	if err := sessions.RecordAnswer("ask_name", "John Doe"); err != nil {
		return err
	}
	if _, err := sessions.Advance(ctx); err != nil {
		return err
	}
	if err := sessions.RecordAnswer("ask_age", "30"); err != nil {
		return err
	}
	if _, err := sessions.Advance(ctx); err != nil {
		return err
	}
	// step 4: ocr scan via the stub extractor
	if err := sessions.ScanDocument(ctx, nil); err != nil {
		return err
	}
	if _, err := sessions.Advance(ctx); err != nil {
		return err
	}
	// step 5: confirm
	if _, err := sessions.Advance(ctx); err != nil {
		return err
	}
	// step 6: submit, completion hands off to the sync queue
	_, err := sessions.Advance(ctx)
	return err
}

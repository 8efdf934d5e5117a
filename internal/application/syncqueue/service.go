package syncqueue

import (
	"context"
	"encoding/json"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sahayak/sahayak-sync/internal/domain/record"
	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

const (
	// SettingLastSyncTime is the settings key holding the last successful
	// sync timestamp (RFC3339).
	SettingLastSyncTime = "last_sync_time"

	defaultMaxAttempts    = 5
	defaultBatchLimit     = 50
	defaultRequestTimeout = 30 * time.Second
)

// Options tune queue behavior. Zero values fall back to defaults.
type Options struct {
	// MaxAttempts is the number of server-rejected deliveries before an
	// item is dead-lettered to failed_terminal. Transport failures do
	// not count; offline retries are unbounded.
	MaxAttempts int
	// BatchLimit caps the number of items sent per drain pass.
	BatchLimit int
	// RequestTimeout bounds each batch delivery call.
	RequestTimeout time.Duration
	// Online reports current connectivity; when it returns true, Enqueue
	// schedules an asynchronous drain. Nil means never schedule.
	Online func() bool
}

// Service is the durable outbound sync queue: it accepts completed
// workflow payloads and profile updates, persists them, and drains them
// to the remote submission service with per-item retry.
type Service struct {
	queue    sync.QueueRepository
	records  record.Repository
	settings sync.SettingsRepository
	client   sync.Client
	deviceID string
	opts     Options
	logger   zerolog.Logger

	mu       stdsync.Mutex
	draining bool
	again    bool
}

// NewService creates a sync queue manager.
func NewService(
	queue sync.QueueRepository,
	records record.Repository,
	settings sync.SettingsRepository,
	client sync.Client,
	deviceID string,
	opts Options,
	logger zerolog.Logger,
) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = defaultBatchLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Service{
		queue:    queue,
		records:  records,
		settings: settings,
		client:   client,
		deviceID: deviceID,
		opts:     opts,
		logger:   logger.With().Str("service", "syncqueue").Logger(),
	}
}

// Enqueue persists an outbound operation and returns its localId. It
// never blocks on network state; if the device looks online, a drain is
// scheduled as a side effect.
func (s *Service) Enqueue(ctx context.Context, itemType sync.ItemType, payload json.RawMessage) (string, error) {
	item := &sync.Item{
		LocalID:   uuid.NewString(),
		Type:      itemType,
		Payload:   payload,
		Status:    sync.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, item); err != nil {
		return "", fmt.Errorf("failed to enqueue sync item: %w", err)
	}
	s.logger.Debug().
		Str("local_id", item.LocalID).
		Str("type", string(itemType)).
		Msg("sync item enqueued")

	if s.opts.Online != nil && s.opts.Online() {
		go func() {
			if err := s.Drain(context.Background()); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled drain failed")
			}
		}()
	}
	return item.LocalID, nil
}

// Drain attempts delivery of all pending and failed items, in creation
// order. At most one drain runs at a time; concurrent calls coalesce
// into one follow-up pass after the current drain completes. Per-item
// failures are recorded and never abort the rest of the queue.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	if s.draining {
		s.again = true
		s.mu.Unlock()
		return nil
	}
	s.draining = true
	s.mu.Unlock()

	for {
		err := s.drainOnce(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("drain pass ended with error")
		}

		s.mu.Lock()
		if s.again && ctx.Err() == nil {
			s.again = false
			s.mu.Unlock()
			continue
		}
		s.draining = false
		s.again = false
		s.mu.Unlock()
		return err
	}
}

func (s *Service) drainOnce(ctx context.Context) error {
	items, err := s.queue.ListDeliverable(ctx, s.opts.BatchLimit)
	if err != nil {
		return fmt.Errorf("failed to list deliverable items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	batch := &sync.BatchRequest{
		DeviceID: s.deviceID,
		Items:    make([]sync.BatchItem, 0, len(items)),
	}
	if last, err := s.lastSyncTime(ctx); err == nil && last != nil {
		batch.LastSyncTime = last
	}
	localIDs := make([]string, 0, len(items))
	byLocalID := make(map[string]*sync.Item, len(items))
	for _, item := range items {
		batch.Items = append(batch.Items, sync.BatchItem{
			LocalID:   item.LocalID,
			Type:      item.Type,
			Payload:   item.Payload,
			Timestamp: item.CreatedAt,
		})
		localIDs = append(localIDs, item.LocalID)
		byLocalID[item.LocalID] = item
	}

	if err := s.queue.MarkInFlight(ctx, localIDs); err != nil {
		return fmt.Errorf("failed to mark items in flight: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	resp, err := s.client.Submit(reqCtx, batch)
	cancel()
	if err != nil {
		// Transport failure: everything goes back to failed without
		// consuming a delivery attempt, so offline periods never
		// dead-letter items.
		s.logger.Info().Err(err).Int("items", len(items)).Msg("batch delivery failed, will retry")
		for _, item := range items {
			if markErr := s.queue.MarkFailed(ctx, item.LocalID, err.Error(), item.Attempts, sync.StatusFailed); markErr != nil {
				s.logger.Error().Err(markErr).Str("local_id", item.LocalID).Msg("failed to mark item failed")
			}
		}
		return nil
	}

	successful := 0
	for _, result := range resp.Results {
		item, ok := byLocalID[result.LocalID]
		if !ok {
			s.logger.Warn().Str("local_id", result.LocalID).Msg("result for unknown item")
			continue
		}
		if result.Status == sync.ResultSuccess {
			s.applySuccess(ctx, item, result)
			successful++
			continue
		}
		s.applyFailure(ctx, item, result)
	}

	if successful > 0 {
		if err := s.settings.Set(ctx, SettingLastSyncTime, time.Now().UTC().Format(time.RFC3339)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to store last sync time")
		}
	}
	s.logger.Info().
		Int("processed", resp.Processed).
		Int("successful", resp.Successful).
		Int("failed", resp.Failed).
		Msg("drain pass completed")
	return nil
}

func (s *Service) applySuccess(ctx context.Context, item *sync.Item, result sync.ItemResult) {
	if err := s.queue.MarkSynced(ctx, item.LocalID); err != nil {
		s.logger.Error().Err(err).Str("local_id", item.LocalID).Msg("failed to mark item synced")
		return
	}
	if item.Type == sync.TypeWorkflowSubmission && result.ReferenceNumber != "" {
		err := s.records.SetReference(ctx, item.LocalID, result.ReferenceNumber, record.StatusCompleted)
		if err != nil {
			s.logger.Error().Err(err).
				Str("local_id", item.LocalID).
				Str("reference_number", result.ReferenceNumber).
				Msg("failed to write back reference number")
			return
		}
		s.logger.Info().
			Str("local_id", item.LocalID).
			Str("reference_number", result.ReferenceNumber).
			Msg("workflow submission acknowledged")
	}
}

func (s *Service) applyFailure(ctx context.Context, item *sync.Item, result sync.ItemResult) {
	attempts := item.Attempts + 1
	status := sync.StatusFailed
	if attempts >= s.opts.MaxAttempts {
		status = sync.StatusFailedTerminal
	}
	if err := s.queue.MarkFailed(ctx, item.LocalID, result.Error, attempts, status); err != nil {
		s.logger.Error().Err(err).Str("local_id", item.LocalID).Msg("failed to mark item failed")
		return
	}
	if status == sync.StatusFailedTerminal {
		if item.Type == sync.TypeWorkflowSubmission {
			if err := s.records.UpdateStatus(ctx, item.LocalID, record.StatusFailed); err != nil {
				s.logger.Error().Err(err).Str("local_id", item.LocalID).Msg("failed to mark record failed")
			}
		}
		s.logger.Error().
			Str("local_id", item.LocalID).
			Str("error", result.Error).
			Int("attempts", attempts).
			Msg("sync item dead-lettered after repeated failures")
		return
	}
	s.logger.Warn().
		Str("local_id", item.LocalID).
		Str("error", result.Error).
		Int("attempts", attempts).
		Msg("sync item failed, will retry")
}

// Status reports queue counts and the last successful sync time for the
// offline-sync indicator.
func (s *Service) Status(ctx context.Context) (sync.QueueCounts, *time.Time, error) {
	counts, err := s.queue.Counts(ctx)
	if err != nil {
		return sync.QueueCounts{}, nil, fmt.Errorf("failed to read queue counts: %w", err)
	}
	last, err := s.lastSyncTime(ctx)
	if err != nil {
		return counts, nil, nil
	}
	return counts, last, nil
}

// RetryTerminal returns dead-lettered items to pending for another
// round of drains. Used by the manual-retry surface.
func (s *Service) RetryTerminal(ctx context.Context) (int, error) {
	n, err := s.queue.ResetTerminal(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset terminal items: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int("items", n).Msg("terminal items reset for retry")
	}
	return n, nil
}

func (s *Service) lastSyncTime(ctx context.Context) (*time.Time, error) {
	raw, err := s.settings.Get(ctx, SettingLastSyncTime)
	if err != nil || raw == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

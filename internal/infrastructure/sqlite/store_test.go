package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayak/sahayak-sync/internal/domain/profile"
	"github.com/sahayak/sahayak-sync/internal/domain/record"
	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "device.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newQueueItem(localID string, status sync.DeliveryStatus, createdAt time.Time) *sync.Item {
	return &sync.Item{
		LocalID:   localID,
		Type:      sync.TypeWorkflowSubmission,
		Payload:   json.RawMessage(`{"workflowId":"pan-application"}`),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestQueueDeliverableOrderAndStatuses(t *testing.T) {
	repo := NewQueueRepository(openTestStore(t))
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, repo.Enqueue(ctx, newQueueItem("second", sync.StatusPending, base.Add(time.Second))))
	require.NoError(t, repo.Enqueue(ctx, newQueueItem("first", sync.StatusFailed, base)))
	require.NoError(t, repo.Enqueue(ctx, newQueueItem("done", sync.StatusSynced, base)))
	require.NoError(t, repo.Enqueue(ctx, newQueueItem("dead", sync.StatusFailedTerminal, base)))

	items, err := repo.ListDeliverable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].LocalID)
	assert.Equal(t, "second", items[1].LocalID)

	items, err = repo.ListDeliverable(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "first", items[0].LocalID)
}

func TestQueueStatusTransitions(t *testing.T) {
	repo := NewQueueRepository(openTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, newQueueItem("a", sync.StatusPending, time.Now().UTC())))
	require.NoError(t, repo.Enqueue(ctx, newQueueItem("b", sync.StatusPending, time.Now().UTC())))

	require.NoError(t, repo.MarkInFlight(ctx, []string{"a", "b"}))
	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.InFlight)

	require.NoError(t, repo.MarkSynced(ctx, "a"))
	require.NoError(t, repo.MarkFailed(ctx, "b", "user not found", 3, sync.StatusFailedTerminal))

	counts, err = repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Synced)
	assert.Equal(t, 1, counts.Terminal)
	assert.Equal(t, 1, counts.Outstanding())

	items, err := repo.ListDeliverable(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestQueueMarkMissingItem(t *testing.T) {
	repo := NewQueueRepository(openTestStore(t))
	ctx := context.Background()

	assert.ErrorIs(t, repo.MarkSynced(ctx, "ghost"), sync.ErrNotFound)
	assert.ErrorIs(t, repo.MarkFailed(ctx, "ghost", "x", 1, sync.StatusFailed), sync.ErrNotFound)
}

func TestQueueInFlightReclaimedOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")
	store, err := Open(path)
	require.NoError(t, err)
	repo := NewQueueRepository(store)
	ctx := context.Background()

	item := newQueueItem("stranded", sync.StatusPending, time.Now().UTC())
	item.Attempts = 2
	require.NoError(t, repo.Enqueue(ctx, item))
	require.NoError(t, repo.MarkInFlight(ctx, []string{"stranded"}))

	// process dies between MarkInFlight and the response write-back
	require.NoError(t, store.Close())
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	items, err := NewQueueRepository(store).ListDeliverable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "stranded", items[0].LocalID)
	assert.Equal(t, sync.StatusPending, items[0].Status)
	assert.Equal(t, 2, items[0].Attempts)
}

func TestQueueResetTerminal(t *testing.T) {
	repo := NewQueueRepository(openTestStore(t))
	ctx := context.Background()

	dead := newQueueItem("dead", sync.StatusFailedTerminal, time.Now().UTC())
	dead.Attempts = 5
	require.NoError(t, repo.Enqueue(ctx, dead))
	require.NoError(t, repo.Enqueue(ctx, newQueueItem("ok", sync.StatusSynced, time.Now().UTC())))

	n, err := repo.ResetTerminal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := repo.ListDeliverable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "dead", items[0].LocalID)
	assert.Equal(t, 0, items[0].Attempts)
	assert.Equal(t, sync.StatusPending, items[0].Status)
}

func TestRecordReferenceWriteBack(t *testing.T) {
	repo := NewRecordRepository(openTestStore(t))
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &record.WorkflowRecord{
		LocalID:      "local-1",
		WorkflowType: "aadhaar-application",
		Data:         map[string]string{"ask_name": "John Doe"},
		Status:       record.StatusPending,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	require.NoError(t, repo.Create(ctx, rec))
	assert.NotZero(t, rec.ID)

	require.NoError(t, repo.SetReference(ctx, "local-1", "REF123456ABC", record.StatusCompleted))

	got, err := repo.GetByLocalID(ctx, "local-1")
	require.NoError(t, err)
	require.NotNil(t, got.ReferenceNumber)
	assert.Equal(t, "REF123456ABC", *got.ReferenceNumber)
	assert.Equal(t, record.StatusCompleted, got.Status)
	assert.Equal(t, "John Doe", got.Data["ask_name"])
	require.NotNil(t, got.CompletedAt)

	_, err = repo.GetByLocalID(ctx, "ghost")
	assert.ErrorIs(t, err, record.ErrNotFound)
	assert.ErrorIs(t, repo.SetReference(ctx, "ghost", "REF000000XXX", record.StatusCompleted), record.ErrNotFound)
}

func TestRecordListNewestFirst(t *testing.T) {
	repo := NewRecordRepository(openTestStore(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Create(ctx, &record.WorkflowRecord{
			LocalID:      id,
			WorkflowType: "pan-application",
			Data:         map[string]string{},
			Status:       record.StatusPending,
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}))
	}

	recs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "new", recs[0].LocalID)
	assert.Equal(t, "mid", recs[1].LocalID)
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := NewSettingsRepository(openTestStore(t))
	ctx := context.Background()

	value, err := repo.Get(ctx, "last_sync_time")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, repo.Set(ctx, "last_sync_time", "2025-03-01T10:00:00Z"))
	require.NoError(t, repo.Set(ctx, "last_sync_time", "2025-03-02T10:00:00Z"))

	value, err = repo.Get(ctx, "last_sync_time")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02T10:00:00Z", value)
}

func TestProfileUpsert(t *testing.T) {
	repo := NewProfileRepository(openTestStore(t))
	ctx := context.Background()

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, profile.ErrNotFound)

	require.NoError(t, repo.Save(ctx, &profile.Profile{
		Name: "Jane", Age: "34", Gender: "female", Location: "Pune",
	}))
	require.NoError(t, repo.Save(ctx, &profile.Profile{
		Name: "Jane", Age: "35", Gender: "female", Location: "Pune", VoiceProfileCreated: true,
	}))

	p, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "35", p.Age)
	assert.True(t, p.VoiceProfileCreated)
	assert.False(t, p.UpdatedAt.IsZero())
}

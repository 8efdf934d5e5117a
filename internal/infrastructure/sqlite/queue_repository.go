package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

// QueueRepository implements sync.QueueRepository on the device store.
type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(store *Store) *QueueRepository {
	return &QueueRepository{db: store.DB()}
}

func (r *QueueRepository) Enqueue(ctx context.Context, item *sync.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_queue (local_id, type, payload, status, attempts, last_error, created_at)
		VALUES (?,?,?,?,?,?,?)
	`, item.LocalID, item.Type, string(item.Payload), item.Status, item.Attempts, item.LastError,
		item.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *QueueRepository) ListDeliverable(ctx context.Context, limit int) ([]*sync.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT local_id, type, payload, status, attempts, last_error, created_at
		FROM sync_queue
		WHERE status IN (?, ?)
		ORDER BY created_at ASC
		LIMIT ?
	`, sync.StatusPending, sync.StatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*sync.Item
	for rows.Next() {
		var item sync.Item
		var payload, createdAt string
		if err := rows.Scan(&item.LocalID, &item.Type, &payload, &item.Status, &item.Attempts, &item.LastError, &createdAt); err != nil {
			return nil, err
		}
		item.Payload = json.RawMessage(payload)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			item.CreatedAt = t
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *QueueRepository) MarkInFlight(ctx context.Context, localIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range localIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sync_queue SET status=? WHERE local_id=?`, sync.StatusInFlight, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *QueueRepository) MarkSynced(ctx context.Context, localID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET status=?, last_error='' WHERE local_id=?`, sync.StatusSynced, localID)
	if err != nil {
		return err
	}
	return checkFound(res)
}

func (r *QueueRepository) MarkFailed(ctx context.Context, localID, lastError string, attempts int, status sync.DeliveryStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET status=?, last_error=?, attempts=? WHERE local_id=?`,
		status, lastError, attempts, localID)
	if err != nil {
		return err
	}
	return checkFound(res)
}

func (r *QueueRepository) Counts(ctx context.Context) (sync.QueueCounts, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM sync_queue GROUP BY status`)
	if err != nil {
		return sync.QueueCounts{}, err
	}
	defer rows.Close()

	var counts sync.QueueCounts
	for rows.Next() {
		var status sync.DeliveryStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return sync.QueueCounts{}, err
		}
		switch status {
		case sync.StatusPending:
			counts.Pending = n
		case sync.StatusInFlight:
			counts.InFlight = n
		case sync.StatusFailed:
			counts.Failed = n
		case sync.StatusFailedTerminal:
			counts.Terminal = n
		case sync.StatusSynced:
			counts.Synced = n
		}
	}
	return counts, rows.Err()
}

func (r *QueueRepository) ResetTerminal(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_queue SET status=?, attempts=0 WHERE status=?`,
		sync.StatusPending, sync.StatusFailedTerminal)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func checkFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sync.ErrNotFound
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sahayak/sahayak-sync/internal/domain/record"
)

// RecordRepository implements record.Repository on the device store.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(store *Store) *RecordRepository {
	return &RecordRepository{db: store.DB()}
}

func (r *RecordRepository) Create(ctx context.Context, rec *record.WorkflowRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return err
	}
	var completedAt *string
	if rec.CompletedAt != nil {
		s := rec.CompletedAt.UTC().Format(time.RFC3339Nano)
		completedAt = &s
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_records (local_id, workflow_type, workflow_data, status, reference_number, created_at, completed_at)
		VALUES (?,?,?,?,?,?,?)
	`, rec.LocalID, rec.WorkflowType, string(data), rec.Status, rec.ReferenceNumber,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), completedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err == nil {
		rec.ID = id
	}
	return nil
}

func (r *RecordRepository) GetByLocalID(ctx context.Context, localID string) (*record.WorkflowRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, local_id, workflow_type, workflow_data, status, reference_number, created_at, completed_at
		FROM workflow_records
		WHERE local_id=?
	`, localID)
	return scanRecord(row)
}

func (r *RecordRepository) List(ctx context.Context, limit int) ([]*record.WorkflowRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, local_id, workflow_type, workflow_data, status, reference_number, created_at, completed_at
		FROM workflow_records
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []*record.WorkflowRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetReference writes only the sync-owned columns so a concurrent user
// edit to other fields of the same record is never clobbered.
func (r *RecordRepository) SetReference(ctx context.Context, localID, referenceNumber string, status record.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE workflow_records SET reference_number=?, status=? WHERE local_id=?
	`, referenceNumber, status, localID)
	if err != nil {
		return err
	}
	return recordFound(res)
}

func (r *RecordRepository) UpdateStatus(ctx context.Context, localID string, status record.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workflow_records SET status=? WHERE local_id=?`, status, localID)
	if err != nil {
		return err
	}
	return recordFound(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*record.WorkflowRecord, error) {
	var rec record.WorkflowRecord
	var data, createdAt string
	var completedAt, reference *string
	if err := row.Scan(&rec.ID, &rec.LocalID, &rec.WorkflowType, &data, &rec.Status, &reference, &createdAt, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, record.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return nil, err
	}
	rec.ReferenceNumber = reference
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if completedAt != nil {
		if t, err := time.Parse(time.RFC3339Nano, *completedAt); err == nil {
			rec.CompletedAt = &t
		}
	}
	return &rec, nil
}

func recordFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return record.ErrNotFound
	}
	return nil
}

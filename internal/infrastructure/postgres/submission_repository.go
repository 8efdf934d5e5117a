package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahayak/sahayak-sync/internal/domain/submission"
)

// SubmissionRepository implements submission.Repository.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Insert persists a submission record. Uniqueness of local_id and
// reference_number is enforced by the table constraints; violations are
// mapped to the domain sentinels so the service can react.
func (r *SubmissionRepository) Insert(ctx context.Context, rec *submission.Record) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO submissions
		(local_id, device_id, workflow_type, workflow_data, status, reference_number, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, rec.LocalID, rec.DeviceID, rec.WorkflowType, rec.Data, rec.Status, rec.ReferenceNumber, rec.SubmittedAt).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "reference_number") {
				return submission.ErrDuplicateReference
			}
			return submission.ErrDuplicateLocalID
		}
		return err
	}
	return nil
}

func (r *SubmissionRepository) GetByLocalID(ctx context.Context, localID string) (*submission.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, local_id, device_id, workflow_type, workflow_data, status, reference_number, submitted_at
		FROM submissions
		WHERE local_id=$1
	`, localID)
	return scanSubmission(row)
}

func (r *SubmissionRepository) GetByReference(ctx context.Context, referenceNumber string) (*submission.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, local_id, device_id, workflow_type, workflow_data, status, reference_number, submitted_at
		FROM submissions
		WHERE reference_number=$1
	`, referenceNumber)
	return scanSubmission(row)
}

func (r *SubmissionRepository) RecordFailure(ctx context.Context, f *submission.Failure) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_failures (device_id, local_id, item_type, payload, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, f.DeviceID, f.LocalID, f.ItemType, f.Payload, f.Reason, f.CreatedAt)
	return err
}

func (r *SubmissionRepository) ListFailures(ctx context.Context, deviceID string, limit int) ([]*submission.Failure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, device_id, local_id, item_type, payload, reason, created_at
		FROM sync_failures
		WHERE device_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var failures []*submission.Failure
	for rows.Next() {
		var f submission.Failure
		var payload json.RawMessage
		if err := rows.Scan(&f.ID, &f.DeviceID, &f.LocalID, &f.ItemType, &payload, &f.Reason, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Payload = payload
		failures = append(failures, &f)
	}
	return failures, rows.Err()
}

func scanSubmission(row pgx.Row) (*submission.Record, error) {
	var rec submission.Record
	var data json.RawMessage
	if err := row.Scan(&rec.ID, &rec.LocalID, &rec.DeviceID, &rec.WorkflowType, &data, &rec.Status, &rec.ReferenceNumber, &rec.SubmittedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, submission.ErrNotFound
		}
		return nil, err
	}
	rec.Data = data
	return &rec, nil
}

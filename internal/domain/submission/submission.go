package submission

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

// Status of a submitted workflow on the server side.
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var (
	// ErrNotFound is returned when no submission matches the lookup.
	ErrNotFound = errors.New("submission not found")
	// ErrDuplicateLocalID signals an idempotency-key conflict: a record
	// for this localId already exists.
	ErrDuplicateLocalID = errors.New("submission already exists for local id")
	// ErrDuplicateReference signals a reference-number collision.
	ErrDuplicateReference = errors.New("reference number already exists")
)

// Record is the server-side source of truth for a submitted workflow,
// keyed by its globally unique reference number. Never deleted.
type Record struct {
	ID              int64           `json:"id"`
	LocalID         string          `json:"localId"`
	DeviceID        string          `json:"deviceId"`
	WorkflowType    string          `json:"workflowType"`
	Data            json.RawMessage `json:"workflowData"`
	Status          Status          `json:"status"`
	ReferenceNumber string          `json:"referenceNumber"`
	SubmittedAt     time.Time       `json:"submittedAt"`
}

// Failure is a server-side audit row for a batch item that could not be
// processed, kept for inspection and manual retry.
type Failure struct {
	ID        int64           `json:"id"`
	DeviceID  string          `json:"deviceId"`
	LocalID   string          `json:"localId"`
	ItemType  sync.ItemType   `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Repository persists submission records. Insert must enforce uniqueness
// of both local_id and reference_number at the storage layer.
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	GetByLocalID(ctx context.Context, localID string) (*Record, error)
	GetByReference(ctx context.Context, referenceNumber string) (*Record, error)
	RecordFailure(ctx context.Context, f *Failure) error
	ListFailures(ctx context.Context, deviceID string, limit int) ([]*Failure, error)
}

package record

import (
	"context"
	"errors"
	"time"
)

// Status represents the local lifecycle of a completed workflow.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound is returned when a workflow record does not exist.
var ErrNotFound = errors.New("workflow record not found")

// WorkflowRecord is the append-only local history of a completed workflow
// session. LocalID ties the record to its sync-queue item so the drain
// can write the server-assigned reference number back.
type WorkflowRecord struct {
	ID              int64             `json:"id"`
	LocalID         string            `json:"localId"`
	WorkflowType    string            `json:"workflowType"`
	Data            map[string]string `json:"workflowData"`
	Status          Status            `json:"status"`
	ReferenceNumber *string           `json:"referenceNumber,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
}

// Repository is the local workflow-history store.
type Repository interface {
	Create(ctx context.Context, rec *WorkflowRecord) error
	GetByLocalID(ctx context.Context, localID string) (*WorkflowRecord, error)
	List(ctx context.Context, limit int) ([]*WorkflowRecord, error)
	// SetReference records the server-assigned reference number and the
	// resulting status. It touches only the sync-owned columns.
	SetReference(ctx context.Context, localID, referenceNumber string, status Status) error
	UpdateStatus(ctx context.Context, localID string, status Status) error
}

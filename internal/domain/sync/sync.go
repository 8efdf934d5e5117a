package sync

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ItemType classifies outbound sync operations.
type ItemType string

const (
	TypeWorkflowSubmission ItemType = "workflow_submission"
	TypeProfileUpdate      ItemType = "profile_update"
	TypeDocumentUpload     ItemType = "document_upload"
)

// DeliveryStatus tracks an item's progress through the queue.
type DeliveryStatus string

const (
	StatusPending        DeliveryStatus = "pending"
	StatusInFlight       DeliveryStatus = "in_flight"
	StatusSynced         DeliveryStatus = "synced"
	StatusFailed         DeliveryStatus = "failed"
	StatusFailedTerminal DeliveryStatus = "failed_terminal"
)

// ErrNotFound is returned when a queue item does not exist.
var ErrNotFound = errors.New("sync item not found")

// Item is a durable outbound operation awaiting delivery. LocalID is the
// client-generated idempotency key the server correlates responses by.
type Item struct {
	LocalID   string
	Type      ItemType
	Payload   json.RawMessage
	Status    DeliveryStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// QueueCounts summarizes the queue for the offline-sync indicator.
type QueueCounts struct {
	Pending  int `json:"pending"`
	InFlight int `json:"inFlight"`
	Failed   int `json:"failed"`
	Terminal int `json:"terminal"`
	Synced   int `json:"synced"`
}

// Outstanding is the number of items still awaiting successful delivery.
func (c QueueCounts) Outstanding() int {
	return c.Pending + c.InFlight + c.Failed + c.Terminal
}

// QueueRepository is the durable store behind the sync queue.
type QueueRepository interface {
	Enqueue(ctx context.Context, item *Item) error
	// ListDeliverable returns pending and failed items in creation order.
	ListDeliverable(ctx context.Context, limit int) ([]*Item, error)
	MarkInFlight(ctx context.Context, localIDs []string) error
	MarkSynced(ctx context.Context, localID string) error
	MarkFailed(ctx context.Context, localID, lastError string, attempts int, status DeliveryStatus) error
	Counts(ctx context.Context) (QueueCounts, error)
	// ResetTerminal returns dead-lettered items to pending for a manual retry.
	ResetTerminal(ctx context.Context) (int, error)
}

// SettingsRepository is the device key/value settings store.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// BatchItem is one operation inside a sync batch request.
type BatchItem struct {
	LocalID   string          `json:"localId"`
	Type      ItemType        `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// BatchRequest is the wire contract for POST /v1/sync.
type BatchRequest struct {
	Items        []BatchItem `json:"items"`
	DeviceID     string      `json:"deviceId"`
	LastSyncTime *time.Time  `json:"lastSyncTime,omitempty"`
}

// Per-item result statuses.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// ItemResult is the server's outcome for one batch item, correlated by
// LocalID rather than position.
type ItemResult struct {
	LocalID         string `json:"localId"`
	Status          string `json:"status"`
	ServerID        string `json:"serverId,omitempty"`
	ReferenceNumber string `json:"referenceNumber,omitempty"`
	Error           string `json:"error,omitempty"`
}

// BatchResponse is the wire contract for a processed sync batch.
type BatchResponse struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []ItemResult `json:"results"`
	SyncTime   time.Time    `json:"syncTime"`
}

// Client delivers batches to the remote submission service.
type Client interface {
	Submit(ctx context.Context, req *BatchRequest) (*BatchResponse, error)
}

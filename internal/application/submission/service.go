package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sahayak/sahayak-sync/internal/domain/profile"
	"github.com/sahayak/sahayak-sync/internal/domain/submission"
	"github.com/sahayak/sahayak-sync/internal/domain/sync"
)

const referenceAttempts = 5

// Service processes sync batches on the server. Each item is handled
// independently; one failure never aborts its siblings. localId is the
// idempotency key: replaying an already-processed workflow_submission
// returns the previously assigned reference number.
type Service struct {
	repo   submission.Repository
	users  profile.UserRepository
	logger zerolog.Logger
}

// NewService creates a submission processor.
func NewService(repo submission.Repository, users profile.UserRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger.With().Str("service", "submission").Logger(),
	}
}

// ProcessBatch handles every item in the request and returns per-item
// outcomes. It never returns an error; malformed items fail individually.
func (s *Service) ProcessBatch(ctx context.Context, req *sync.BatchRequest) *sync.BatchResponse {
	resp := &sync.BatchResponse{
		Processed: len(req.Items),
		Results:   make([]sync.ItemResult, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		result := s.processItem(ctx, req.DeviceID, item)
		if result.Status == sync.ResultSuccess {
			resp.Successful++
		} else {
			resp.Failed++
			s.recordFailure(ctx, req.DeviceID, item, result.Error)
		}
		resp.Results = append(resp.Results, result)
	}

	resp.SyncTime = time.Now().UTC()
	s.logger.Info().
		Str("device_id", req.DeviceID).
		Int("processed", resp.Processed).
		Int("successful", resp.Successful).
		Int("failed", resp.Failed).
		Msg("bulk sync completed")
	return resp
}

func (s *Service) processItem(ctx context.Context, deviceID string, item sync.BatchItem) sync.ItemResult {
	result := sync.ItemResult{LocalID: item.LocalID, Status: sync.ResultFailed}
	if item.LocalID == "" {
		result.Error = "localId is required"
		return result
	}

	switch item.Type {
	case sync.TypeWorkflowSubmission:
		return s.processWorkflowSubmission(ctx, deviceID, item)
	case sync.TypeProfileUpdate:
		return s.processProfileUpdate(ctx, item)
	case sync.TypeDocumentUpload:
		// Placeholder acknowledgment; file bytes move through the OCR
		// collaborator, not the sync queue.
		result.Status = sync.ResultSuccess
		result.ServerID = "doc_" + uuid.NewString()
		return result
	default:
		result.Error = "unknown sync item type: " + string(item.Type)
		return result
	}
}

func (s *Service) processWorkflowSubmission(ctx context.Context, deviceID string, item sync.BatchItem) sync.ItemResult {
	result := sync.ItemResult{LocalID: item.LocalID, Status: sync.ResultFailed}

	var payload sync.WorkflowSubmissionPayload
	if err := json.Unmarshal(item.Payload, &payload); err != nil {
		result.Error = "invalid workflow submission payload: " + err.Error()
		return result
	}
	if payload.WorkflowID == "" {
		result.Error = "workflowId is required"
		return result
	}

	// Replay of an already-processed item returns the prior record.
	if existing, err := s.repo.GetByLocalID(ctx, item.LocalID); err == nil {
		return successResult(existing)
	} else if !errors.Is(err, submission.ErrNotFound) {
		result.Error = "lookup failed: " + err.Error()
		return result
	}

	data, err := json.Marshal(payload.WorkflowData)
	if err != nil {
		result.Error = "invalid workflow data: " + err.Error()
		return result
	}
	rec := &submission.Record{
		LocalID:      item.LocalID,
		DeviceID:     deviceID,
		WorkflowType: payload.WorkflowID,
		Data:         data,
		Status:       submission.StatusSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		rec.ReferenceNumber = submission.GenerateReference(time.Now())
		err := s.repo.Insert(ctx, rec)
		if err == nil {
			s.logger.Info().
				Str("local_id", item.LocalID).
				Str("workflow_type", payload.WorkflowID).
				Str("reference_number", rec.ReferenceNumber).
				Msg("workflow submission accepted")
			return successResult(rec)
		}
		if errors.Is(err, submission.ErrDuplicateReference) {
			continue
		}
		if errors.Is(err, submission.ErrDuplicateLocalID) {
			// Lost the race against a concurrent replay of this item.
			if existing, getErr := s.repo.GetByLocalID(ctx, item.LocalID); getErr == nil {
				return successResult(existing)
			}
		}
		result.Error = "failed to persist submission: " + err.Error()
		return result
	}
	result.Error = fmt.Sprintf("could not allocate a unique reference number after %d attempts", referenceAttempts)
	return result
}

func (s *Service) processProfileUpdate(ctx context.Context, item sync.BatchItem) sync.ItemResult {
	result := sync.ItemResult{LocalID: item.LocalID, Status: sync.ResultFailed}

	var payload sync.ProfileUpdatePayload
	if err := json.Unmarshal(item.Payload, &payload); err != nil {
		result.Error = "invalid profile update payload: " + err.Error()
		return result
	}
	if payload.UserID == "" {
		result.Error = "userId is required"
		return result
	}
	if err := s.users.UpdatePartial(ctx, payload.UserID, payload.Fields); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			result.Error = "user not found"
		} else {
			result.Error = "profile update failed: " + err.Error()
		}
		return result
	}
	result.Status = sync.ResultSuccess
	result.ServerID = payload.UserID
	return result
}

func (s *Service) recordFailure(ctx context.Context, deviceID string, item sync.BatchItem, reason string) {
	f := &submission.Failure{
		DeviceID:  deviceID,
		LocalID:   item.LocalID,
		ItemType:  item.Type,
		Payload:   item.Payload,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.RecordFailure(ctx, f); err != nil {
		s.logger.Error().Err(err).Str("local_id", item.LocalID).Msg("failed to record sync failure")
	}
}

// ListFailures exposes the server-side failure audit for a device.
func (s *Service) ListFailures(ctx context.Context, deviceID string, limit int) ([]*submission.Failure, error) {
	return s.repo.ListFailures(ctx, deviceID, limit)
}

func successResult(rec *submission.Record) sync.ItemResult {
	return sync.ItemResult{
		LocalID:         rec.LocalID,
		Status:          sync.ResultSuccess,
		ServerID:        fmt.Sprintf("%d", rec.ID),
		ReferenceNumber: rec.ReferenceNumber,
	}
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahayak/sahayak-sync/internal/collaborators"
	"github.com/sahayak/sahayak-sync/internal/domain/record"
	domainSession "github.com/sahayak/sahayak-sync/internal/domain/session"
	domainSync "github.com/sahayak/sahayak-sync/internal/domain/sync"
	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
)

var (
	// ErrSessionActive is returned by Start while another session runs.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoSession is returned when no session is active.
	ErrNoSession = errors.New("no active session")
)

// Enqueuer hands completed payloads to the sync queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, itemType domainSync.ItemType, payload json.RawMessage) (string, error)
}

// Service owns the single active workflow session on a device and hands
// completed payloads to the sync queue exactly once per session.
type Service struct {
	catalog   *workflow.Catalog
	queue     Enqueuer
	records   record.Repository
	extractor collaborators.Extractor
	logger    zerolog.Logger

	mu      stdsync.Mutex
	active  *domainSession.Session
	pending *pendingHandoff
}

// pendingHandoff retains a completed session's data when the hand-off
// to the local store fails, so a store hiccup never discards a finished
// form. A non-empty localID means the queue enqueue already succeeded
// and must not run again on retry.
type pendingHandoff struct {
	completion *domainSession.Completion
	localID    string
}

// NewService creates a session manager.
func NewService(
	catalog *workflow.Catalog,
	queue Enqueuer,
	records record.Repository,
	extractor collaborators.Extractor,
	logger zerolog.Logger,
) *Service {
	return &Service{
		catalog:   catalog,
		queue:     queue,
		records:   records,
		extractor: extractor,
		logger:    logger.With().Str("service", "session").Logger(),
	}
}

// Start begins a guided run of the named workflow. Fails while another
// session is active; the caller must complete or abandon it first.
func (s *Service) Start(workflowID string) (*domainSession.Session, error) {
	def, err := s.catalog.Get(workflowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil || (s.active != nil && s.active.Status == domainSession.StatusActive) {
		return nil, ErrSessionActive
	}
	s.active = domainSession.New(def)
	s.logger.Info().
		Str("workflow_id", workflowID).
		Str("session_id", s.active.ID.String()).
		Msg("session started")
	return s.active, nil
}

// Current returns the active session, or ErrNoSession.
func (s *Service) Current() (*domainSession.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.Status != domainSession.StatusActive {
		return nil, ErrNoSession
	}
	return s.active, nil
}

// RecordAnswer validates and stores an answer on the active session.
func (s *Service) RecordAnswer(stepKey, value string) error {
	sess, err := s.Current()
	if err != nil {
		return err
	}
	return sess.RecordAnswer(stepKey, value)
}

// ScanDocument runs the OCR collaborator for the current ocr step and
// records the extracted fields as the step's answer.
func (s *Service) ScanDocument(ctx context.Context, image []byte) error {
	sess, err := s.Current()
	if err != nil {
		return err
	}
	step := sess.CurrentStepInfo()
	if step.Type != workflow.StepOCR {
		return fmt.Errorf("current step %s is not an ocr step", step.Key)
	}
	fields, err := s.extractor.Extract(ctx, image, step.DocumentType)
	if err != nil {
		return fmt.Errorf("document extraction failed: %w", err)
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode extracted fields: %w", err)
	}
	return sess.RecordAnswer(step.Key, string(encoded))
}

// Advance moves the active session forward. When the session completes,
// the snapshot is persisted as a pending WorkflowRecord and enqueued for
// sync; the session slot is then cleared. If the hand-off fails, the
// completion is retained and the next Advance retries it instead of
// discarding the finished form.
func (s *Service) Advance(ctx context.Context) (*domainSession.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return s.finishHandoff(ctx)
	}
	if s.active == nil || s.active.Status != domainSession.StatusActive {
		return nil, ErrNoSession
	}

	completion, err := s.active.Advance()
	if err != nil {
		return nil, err
	}
	if completion == nil {
		return nil, nil
	}
	s.pending = &pendingHandoff{completion: completion}
	return s.finishHandoff(ctx)
}

func (s *Service) finishHandoff(ctx context.Context) (*domainSession.Completion, error) {
	if err := s.handoff(ctx, s.pending); err != nil {
		s.logger.Warn().Err(err).
			Str("workflow_id", s.pending.completion.WorkflowType).
			Msg("hand-off failed, completion retained for retry")
		return nil, err
	}
	completion := s.pending.completion
	s.logger.Info().
		Str("workflow_id", completion.WorkflowType).
		Str("session_id", s.active.ID.String()).
		Msg("session completed")
	s.pending = nil
	s.active = nil
	return completion, nil
}

// Retreat moves the active session back one step.
func (s *Service) Retreat() error {
	sess, err := s.Current()
	if err != nil {
		return err
	}
	return sess.Retreat()
}

// Abandon discards the active session, or a completed session whose
// hand-off keeps failing. Items already enqueued from prior completed
// sessions are unaffected.
func (s *Service) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.logger.Warn().
			Str("workflow_id", s.pending.completion.WorkflowType).
			Msg("discarding completed session awaiting hand-off")
		s.pending = nil
		s.active = nil
		return nil
	}
	if s.active == nil || s.active.Status != domainSession.StatusActive {
		return ErrNoSession
	}
	if err := s.active.Abandon(); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", s.active.ID.String()).Msg("session abandoned")
	s.active = nil
	return nil
}

func (s *Service) handoff(ctx context.Context, p *pendingHandoff) error {
	if p.localID == "" {
		payload, err := json.Marshal(domainSync.WorkflowSubmissionPayload{
			WorkflowID:   p.completion.WorkflowType,
			WorkflowData: p.completion.Data,
		})
		if err != nil {
			return fmt.Errorf("failed to encode submission payload: %w", err)
		}
		localID, err := s.queue.Enqueue(ctx, domainSync.TypeWorkflowSubmission, payload)
		if err != nil {
			return fmt.Errorf("failed to enqueue completed workflow: %w", err)
		}
		p.localID = localID
	}

	now := time.Now().UTC()
	rec := &record.WorkflowRecord{
		LocalID:      p.localID,
		WorkflowType: p.completion.WorkflowType,
		Data:         p.completion.Data,
		Status:       record.StatusPending,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return fmt.Errorf("failed to persist workflow record: %w", err)
	}
	return nil
}

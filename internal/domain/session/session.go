package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahayak/sahayak-sync/internal/domain/workflow"
)

// Status represents the lifecycle state of a workflow session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

var (
	// ErrNotActive is returned by operations that require an active session.
	ErrNotActive = errors.New("session is not active")
	// ErrUnknownStep is returned when an answer targets a key outside the definition.
	ErrUnknownStep = errors.New("step key not in workflow definition")
	// ErrFutureStep is returned when an answer targets a step not yet reached.
	ErrFutureStep = errors.New("step not yet reached")
)

// StepIncompleteError is returned by Advance when the current ask step has
// no recorded answer satisfying its validation rule.
type StepIncompleteError struct {
	StepKey string
}

func (e *StepIncompleteError) Error() string {
	return fmt.Sprintf("step %s is incomplete", e.StepKey)
}

// Completion is the snapshot handed off when a session finishes.
type Completion struct {
	WorkflowType string
	Data         map[string]string
	CompletedAt  time.Time
}

// Session tracks one guided-form run: current step, collected answers and
// lifecycle status. There is no transition out of completed or abandoned;
// a new run requires a new session.
type Session struct {
	ID          uuid.UUID
	Definition  *workflow.Definition
	CurrentStep int
	Collected   map[string]string
	Status      Status
	StartedAt   time.Time
}

// New creates an active session at step 0 with no collected data.
func New(def *workflow.Definition) *Session {
	return &Session{
		ID:         uuid.New(),
		Definition: def,
		Collected:  make(map[string]string),
		Status:     StatusActive,
		StartedAt:  time.Now().UTC(),
	}
}

// RecordAnswer validates and stores an answer for the current step or any
// prior step (edits). Last write wins per key.
func (s *Session) RecordAnswer(stepKey, value string) error {
	if s.Status != StatusActive {
		return ErrNotActive
	}
	step, index, ok := s.Definition.StepByKey(stepKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, stepKey)
	}
	if index > s.CurrentStep {
		return fmt.Errorf("%w: %s", ErrFutureStep, stepKey)
	}
	if err := step.ValidateAnswer(value); err != nil {
		return err
	}
	s.Collected[stepKey] = value
	return nil
}

// Advance moves to the next step. An ask step blocks until its answer is
// recorded and valid. Advancing past the last step completes the session
// and returns the collected-data snapshot; all other calls return nil.
func (s *Session) Advance() (*Completion, error) {
	if s.Status != StatusActive {
		return nil, ErrNotActive
	}
	step, _ := s.Definition.StepAt(s.CurrentStep)
	if step.Type == workflow.StepAsk {
		value, ok := s.Collected[step.Key]
		if !ok {
			return nil, &StepIncompleteError{StepKey: step.Key}
		}
		if err := step.ValidateAnswer(value); err != nil {
			return nil, &StepIncompleteError{StepKey: step.Key}
		}
	}
	if s.CurrentStep < s.Definition.StepCount()-1 {
		s.CurrentStep++
		return nil, nil
	}

	s.Status = StatusCompleted
	data := make(map[string]string, len(s.Collected))
	for k, v := range s.Collected {
		data[k] = v
	}
	return &Completion{
		WorkflowType: s.Definition.ID,
		Data:         data,
		CompletedAt:  time.Now().UTC(),
	}, nil
}

// Retreat moves back one step, floored at 0. Calling it at step 0 is a
// no-op, not an error.
func (s *Session) Retreat() error {
	if s.Status != StatusActive {
		return ErrNotActive
	}
	if s.CurrentStep > 0 {
		s.CurrentStep--
	}
	return nil
}

// Abandon discards collected data and ends the session.
func (s *Session) Abandon() error {
	if s.Status != StatusActive {
		return ErrNotActive
	}
	s.Status = StatusAbandoned
	s.Collected = make(map[string]string)
	return nil
}

// CurrentStepInfo returns the step the session is positioned on.
func (s *Session) CurrentStepInfo() *workflow.Step {
	step, _ := s.Definition.StepAt(s.CurrentStep)
	return step
}

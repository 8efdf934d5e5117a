package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahayak/sahayak-sync/internal/domain/submission"
)

// TimelineEntry is one stage of a submitted application's progress.
type TimelineEntry struct {
	Stage       string    `json:"stage"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// Info is the tracking projection returned for a reference number.
type Info struct {
	ReferenceNumber     string            `json:"referenceNumber"`
	WorkflowType        string            `json:"workflowType"`
	Status              submission.Status `json:"status"`
	CurrentStage        string            `json:"currentStage"`
	Progress            int               `json:"progress"`
	Timeline            []TimelineEntry   `json:"timeline"`
	EstimatedCompletion time.Time         `json:"estimatedCompletion"`
	ProcessingTime      string            `json:"estimatedProcessingTime"`
	SubmittedAt         time.Time         `json:"submittedAt"`
}

var processingTimes = map[string]string{
	"aadhaar-application":  "90 days",
	"pan-application":      "15-20 business days",
	"passport-application": "30-45 days",
}

const defaultProcessingTime = "15-30 business days"

// Service projects submission records into user-facing tracking info.
type Service struct {
	repo   submission.Repository
	logger zerolog.Logger
}

// NewService creates a tracking service.
func NewService(repo submission.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "tracking").Logger(),
	}
}

// Track returns the status projection for a reference number. Reference
// numbers are opaque strings here; only the store knows their shape.
func (s *Service) Track(ctx context.Context, referenceNumber string) (*Info, error) {
	rec, err := s.repo.GetByReference(ctx, referenceNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reference %s: %w", referenceNumber, err)
	}

	info := &Info{
		ReferenceNumber: rec.ReferenceNumber,
		WorkflowType:    rec.WorkflowType,
		Status:          rec.Status,
		SubmittedAt:     rec.SubmittedAt,
		ProcessingTime:  processingTimeFor(rec.WorkflowType),
		Timeline: []TimelineEntry{
			{
				Stage:       "submitted",
				Timestamp:   rec.SubmittedAt,
				Description: "Application submitted successfully",
			},
		},
	}

	switch rec.Status {
	case submission.StatusCompleted:
		info.Progress = 100
		info.CurrentStage = "completed"
		info.EstimatedCompletion = rec.SubmittedAt
		info.Timeline = append(info.Timeline, TimelineEntry{
			Stage:       "processing",
			Timestamp:   rec.SubmittedAt.Add(24 * time.Hour),
			Description: "Application under review",
		})
	case submission.StatusInProgress:
		info.Progress = 60
		info.CurrentStage = "processing"
		info.EstimatedCompletion = rec.SubmittedAt.Add(30 * 24 * time.Hour)
	default:
		info.Progress = 25
		info.CurrentStage = "processing"
		info.EstimatedCompletion = rec.SubmittedAt.Add(30 * 24 * time.Hour)
	}
	return info, nil
}

func processingTimeFor(workflowType string) string {
	if t, ok := processingTimes[workflowType]; ok {
		return t
	}
	return defaultProcessingTime
}

package sync

import (
	"github.com/sahayak/sahayak-sync/internal/domain/profile"
)

// WorkflowSubmissionPayload is the payload of a workflow_submission item.
type WorkflowSubmissionPayload struct {
	WorkflowID   string            `json:"workflowId"`
	WorkflowData map[string]string `json:"workflowData"`
}

// ProfileUpdatePayload is the payload of a profile_update item.
type ProfileUpdatePayload struct {
	UserID string         `json:"userId"`
	Fields profile.Update `json:"fields"`
}

// DocumentUploadPayload is the payload of a document_upload item. The
// actual bytes travel through the OCR collaborator; the queue only
// carries the reference.
type DocumentUploadPayload struct {
	DocumentType string `json:"documentType"`
	FileName     string `json:"fileName"`
}

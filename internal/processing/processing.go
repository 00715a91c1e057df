// Package processing owns the per-document processing lifecycle. It drives
// the extraction workflow, persists progress and terminal status through the
// documents system, and records audit events for every transition.
package processing

import (
	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/documents"
)

// Trigger identifies what initiated a processing run.
type Trigger string

// Processing triggers.
const (
	TriggerManual Trigger = "manual"
	TriggerBulk   Trigger = "bulk"
	TriggerUpload Trigger = "upload-auto"
)

// Valid reports whether t is a recognized trigger.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerManual, TriggerBulk, TriggerUpload:
		return true
	}
	return false
}

// BulkResult reports the outcome of one document within a bulk run.
type BulkResult struct {
	DocumentID uuid.UUID                  `json:"document_id"`
	Status     documents.ProcessingStatus `json:"status"`
	Error      string                     `json:"error,omitempty"`
}

// Error codes recorded on failed documents.
const (
	CodeContentUnavailable = "content_unavailable"
	CodeUnusableContent    = "unusable_content"
	CodeAIUnreachable      = "ai_unreachable"
	CodeNoColumns          = "no_columns"
	CodeExtractionError    = "extraction_error"
)

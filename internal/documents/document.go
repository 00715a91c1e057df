// Package documents implements the document domain: upload and registration,
// blob storage integration, per-column extracted values, and the processing
// state machine mutations that drive the extraction lifecycle.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus is a document's position in the processing lifecycle.
type ProcessingStatus string

// Processing lifecycle states. Status only moves forward along
// pending → processing → completed|failed; a reprocess request resets a
// terminal state back to processing.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether s is a final state.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ValueStatus is the optional yes/no/pending marker on an extracted value.
// A nil *ValueStatus means no status was determined.
type ValueStatus string

// Extracted value statuses.
const (
	ValueYes     ValueStatus = "yes"
	ValueNo      ValueStatus = "no"
	ValuePending ValueStatus = "pending"
)

// Method identifies how an extracted value was produced.
type Method string

// Extraction methods.
const (
	MethodAI     Method = "ai"
	MethodManual Method = "manual"
	MethodOCR    Method = "ocr"
)

// Document represents one uploaded file with its metadata, blob reference,
// and processing state.
type Document struct {
	ID           uuid.UUID        `json:"id"`
	ProjectID    uuid.UUID        `json:"project_id"`
	Filename     string           `json:"filename"`
	ContentType  string           `json:"content_type"`
	Extension    string           `json:"extension"`
	SizeBytes    int64            `json:"size_bytes"`
	PageCount    *int             `json:"page_count"`
	StorageKey   string           `json:"storage_key"`
	Status       ProcessingStatus `json:"status"`
	Progress     int              `json:"progress"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	ErrorCode    *string          `json:"error_code,omitempty"`
	UploadedAt   time.Time        `json:"uploaded_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ExtractedValue is the value/confidence/provenance tuple produced for one
// column on one document.
type ExtractedValue struct {
	Value       string       `json:"value"`
	Type        string       `json:"type"`
	Status      *ValueStatus `json:"status"`
	Confidence  float64      `json:"confidence"`
	ExtractedAt time.Time    `json:"extracted_at"`
	Method      Method       `json:"method"`
	Model       *string      `json:"model,omitempty"`
	Version     *string      `json:"version,omitempty"`
}

// ValueWrite carries one column's extraction output into a batch write.
type ValueWrite struct {
	ColumnID   uuid.UUID    `json:"column_id"`
	Value      string       `json:"value"`
	Type       string       `json:"type"`
	Status     *ValueStatus `json:"status"`
	Confidence float64      `json:"confidence"`
	Method     Method       `json:"method"`
	Model      *string      `json:"model,omitempty"`
	Version    *string      `json:"version,omitempty"`
}

// SetValueCommand is a manual single-value write. Confidence defaults to 1
// when nil; manual entry is taken at face value.
type SetValueCommand struct {
	Value      string       `json:"value"`
	Status     *ValueStatus `json:"status"`
	Confidence *float64     `json:"confidence"`
}

// ProcessingError is the structured failure payload recorded when a document
// transitions to failed.
type ProcessingError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CreateCommand carries the data needed to upload and register a new document.
// Data holds the raw file bytes. PageCount is optional and may be extracted
// by the caller via pdfcpu; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	ProjectID   uuid.UUID
	PageCount   *int
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, Document is populated and Error is empty.
type BatchResult struct {
	Document *Document `json:"document,omitempty"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}

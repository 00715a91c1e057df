package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/extraction"
)

const (
	KeyDocumentID = "document_id"
	KeyTempDir    = "temp_dir"
	KeyPipeState  = "pipeline_state"
	KeyResult     = "workflow_result"
)

// Progress checkpoints written as the pipeline advances.
const (
	progressFetched   = 25
	progressExtracted = 50
	progressFields    = 75
)

// PipelineState is the working state threaded through the extraction graph.
type PipelineState struct {
	Document   documents.Document
	Kind       extraction.ContentKind
	Columns    []extraction.Column
	SourcePath string
	Text       string
	Attempts   []extraction.Attempt
	Result     *extraction.Result
	Writes     []documents.ValueWrite
}

// WorkflowResult is the final output from an extraction workflow execution.
type WorkflowResult struct {
	DocumentID  uuid.UUID               `json:"document_id"`
	Kind        extraction.ContentKind  `json:"kind"`
	Attempts    []extraction.Attempt    `json:"attempts,omitempty"`
	Fields      int                     `json:"fields"`
	Malformed   bool                    `json:"malformed"`
	Truncated   bool                    `json:"truncated"`
	Writes      []documents.ValueWrite  `json:"-"`
	CompletedAt time.Time               `json:"completed_at"`
}

package processing

import (
	"context"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/workflow"
)

// System defines the public contract for processing operations. Start and
// Reprocess block until the document reaches a terminal state; the returned
// document carries that state. Only the concurrency guard and lookup
// failures surface as errors.
type System interface {
	Handler() *Handler

	Start(ctx context.Context, id uuid.UUID, trigger Trigger) (*documents.Document, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	ProcessPending(ctx context.Context) ([]BulkResult, error)
}

// Runner executes the extraction workflow for one document. Faked in tests.
type Runner interface {
	Run(ctx context.Context, documentID uuid.UUID) (*workflow.WorkflowResult, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, documentID uuid.UUID) (*workflow.WorkflowResult, error)

func (f RunnerFunc) Run(ctx context.Context, documentID uuid.UUID) (*workflow.WorkflowResult, error) {
	return f(ctx, documentID)
}

// NewRunner creates the production Runner over a workflow runtime.
func NewRunner(rt *workflow.Runtime) Runner {
	return RunnerFunc(func(ctx context.Context, documentID uuid.UUID) (*workflow.WorkflowResult, error) {
		return workflow.Execute(ctx, rt, documentID)
	})
}

// Aggregator recomputes collection values affected by a completed document.
// Implemented by the collections system; nil disables auto-aggregation.
type Aggregator interface {
	AggregateForDocument(ctx context.Context, documentID uuid.UUID) error
}

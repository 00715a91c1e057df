package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Pending lists documents awaiting their first processing run.
	Pending(ctx context.Context) ([]Document, error)

	// Extracted value access. Values returns the document's full
	// column-keyed value map; Value returns a single column's value or
	// ErrValueNotFound.
	Values(ctx context.Context, id uuid.UUID) (map[uuid.UUID]ExtractedValue, error)
	Value(ctx context.Context, id, columnID uuid.UUID) (*ExtractedValue, error)
	SetValue(ctx context.Context, id, columnID uuid.UUID, cmd SetValueCommand) (*ExtractedValue, error)

	// PutValues upserts a batch of extracted values in one transaction.
	// Columns holding a manual override are left untouched.
	PutValues(ctx context.Context, id uuid.UUID, writes []ValueWrite) error

	// State machine mutations. BeginProcessing is the single atomic entry
	// point into the processing state; it fails with ErrAlreadyProcessing
	// when the document is mid-run.
	BeginProcessing(ctx context.Context, id uuid.UUID) (*Document, error)
	SetProgress(ctx context.Context, id uuid.UUID, progress int) error
	CompleteProcessing(ctx context.Context, id uuid.UUID) (*Document, error)
	FailProcessing(ctx context.Context, id uuid.UUID, perr ProcessingError) (*Document, error)
}

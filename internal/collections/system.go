package collections

import (
	"context"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/pagination"
)

// System defines the public contract for collection domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Collection], error)

	Find(ctx context.Context, id uuid.UUID) (*Collection, error)
	Create(ctx context.Context, cmd CreateCommand) (*Collection, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddDocument(ctx context.Context, id, documentID uuid.UUID) (*Collection, error)
	RemoveDocument(ctx context.Context, id, documentID uuid.UUID) (*Collection, error)

	// Values returns the collection's stored aggregated values keyed by
	// column. Aggregate recomputes and persists one column's aggregated
	// value; it is idempotent for unchanged inputs. AggregateForDocument
	// recomputes every enabled column of every auto-aggregating collection
	// containing the document.
	Values(ctx context.Context, id uuid.UUID) (map[uuid.UUID]AggregatedValue, error)
	Aggregate(ctx context.Context, id, columnID uuid.UUID) (*AggregatedValue, error)
	AggregateForDocument(ctx context.Context, documentID uuid.UUID) error
}

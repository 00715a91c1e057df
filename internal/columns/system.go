package columns

import (
	"context"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/pagination"
)

// System defines the public contract for column domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Column], error)

	Find(ctx context.Context, id uuid.UUID) (*Column, error)
	// Enabled returns every extraction-enabled column in creation order.
	// The pipeline sends exactly this set with each extraction call.
	Enabled(ctx context.Context) ([]Column, error)
	Create(ctx context.Context, cmd CreateCommand) (*Column, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Column, error)
	// Delete removes a column definition. Stored extracted values referencing
	// the column cascade away with it, on documents and collections alike.
	Delete(ctx context.Context, id uuid.UUID) error
}

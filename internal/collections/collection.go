// Package collections implements ordered document groupings and the
// aggregation algorithm that merges per-document extracted values into one
// value per column.
package collections

import (
	"time"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/documents"
)

// AggregationType describes how an aggregated value was produced.
type AggregationType string

// Aggregation types.
const (
	AggregationSingle       AggregationType = "single"
	AggregationConcatenated AggregationType = "concatenated"
)

// Delimiter joining concatenated values, in aggregation order.
const concatDelimiter = " | "

// Settings controls aggregation behavior for a collection. Every id in
// AggregationOrder and HiddenDocuments must be a member of the collection's
// document list; visible documents absent from AggregationOrder are treated
// as appended at the end in document list order.
type Settings struct {
	AutoAggregate    bool        `json:"auto_aggregate"`
	AggregationOrder []uuid.UUID `json:"aggregation_order"`
	HiddenDocuments  []uuid.UUID `json:"hidden_documents"`
}

// Collection is an ordered grouping of documents belonging to one project.
type Collection struct {
	ID        uuid.UUID   `json:"id"`
	ProjectID uuid.UUID   `json:"project_id"`
	Name      string      `json:"name"`
	Documents []uuid.UUID `json:"documents"`
	Settings  Settings    `json:"settings"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AggregatedValue is a collection-level extracted value: the merged result
// plus the ordered documents that contributed to it.
type AggregatedValue struct {
	documents.ExtractedValue
	AggregationType AggregationType `json:"aggregation_type"`
	SourceDocuments []uuid.UUID     `json:"source_documents"`
}

// CreateCommand carries the data needed to create a collection.
type CreateCommand struct {
	Name      string      `json:"name"`
	ProjectID uuid.UUID   `json:"project_id"`
	Documents []uuid.UUID `json:"documents"`
}

// UpdateCommand modifies a collection's name, membership, or settings.
// Nil fields are left unchanged.
type UpdateCommand struct {
	Name      *string      `json:"name,omitempty"`
	Documents *[]uuid.UUID `json:"documents,omitempty"`
	Settings  *Settings    `json:"settings,omitempty"`
}

package collections

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/query"
	"github.com/docgrid/docgrid/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "collections", "c").
	Project("id", "ID").
	Project("project_id", "ProjectID").
	Project("name", "Name").
	Project("auto_aggregate", "AutoAggregate").
	Project("document_ids", "DocumentIDs").
	Project("aggregation_order", "AggregationOrder").
	Project("hidden_documents", "HiddenDocuments").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for collection queries.
// Nil fields are ignored.
type Filters struct {
	Name          *string    `json:"name,omitempty"`
	ProjectID     *uuid.UUID `json:"project_id,omitempty"`
	AutoAggregate *bool      `json:"auto_aggregate,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("ProjectID", f.ProjectID).
		WhereEquals("AutoAggregate", f.AutoAggregate)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if p := values.Get("project_id"); p != "" {
		if id, err := uuid.Parse(p); err == nil {
			f.ProjectID = &id
		}
	}

	if a := values.Get("auto_aggregate"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.AutoAggregate = &v
		}
	}

	return f
}

func scanCollection(s repository.Scanner) (Collection, error) {
	var (
		c         Collection
		docIDs    []byte
		order     []byte
		hidden    []byte
	)

	err := s.Scan(
		&c.ID,
		&c.ProjectID,
		&c.Name,
		&c.Settings.AutoAggregate,
		&docIDs,
		&order,
		&hidden,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	if err := unmarshalIDs(docIDs, &c.Documents); err != nil {
		return c, fmt.Errorf("decode document_ids: %w", err)
	}
	if err := unmarshalIDs(order, &c.Settings.AggregationOrder); err != nil {
		return c, fmt.Errorf("decode aggregation_order: %w", err)
	}
	if err := unmarshalIDs(hidden, &c.Settings.HiddenDocuments); err != nil {
		return c, fmt.Errorf("decode hidden_documents: %w", err)
	}

	return c, nil
}

func unmarshalIDs(data []byte, target *[]uuid.UUID) error {
	if len(data) == 0 {
		*target = []uuid.UUID{}
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return err
	}
	if *target == nil {
		*target = []uuid.UUID{}
	}
	return nil
}

func marshalIDs(ids []uuid.UUID) []byte {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	data, _ := json.Marshal(ids)
	return data
}

type collectionValue struct {
	ColumnID uuid.UUID
	AggregatedValue
}

func scanCollectionValue(s repository.Scanner) (collectionValue, error) {
	var (
		v       collectionValue
		sources []byte
	)

	err := s.Scan(
		&v.ColumnID,
		&v.Value,
		&v.Type,
		&v.Status,
		&v.Confidence,
		&v.ExtractedAt,
		&v.Method,
		&v.Model,
		&v.Version,
		&v.AggregationType,
		&sources,
	)
	if err != nil {
		return v, err
	}

	if err := unmarshalIDs(sources, &v.SourceDocuments); err != nil {
		return v, fmt.Errorf("decode source_documents: %w", err)
	}

	return v, nil
}

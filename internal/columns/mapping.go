package columns

import (
	"net/url"
	"strconv"

	"github.com/docgrid/docgrid/pkg/query"
	"github.com/docgrid/docgrid/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "columns", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("prompt", "Prompt").
	Project("type", "Type").
	Project("ai_model", "AIModel").
	Project("extraction_enabled", "ExtractionEnabled").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: false,
}

// Filters contains optional filtering criteria for column queries.
// Nil fields are ignored. Type and ExtractionEnabled use exact matching;
// Name uses case-insensitive contains matching.
type Filters struct {
	Name              *string `json:"name,omitempty"`
	Type              *string `json:"type,omitempty"`
	ExtractionEnabled *bool   `json:"extraction_enabled,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Type", f.Type).
		WhereEquals("ExtractionEnabled", f.ExtractionEnabled)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if t := values.Get("type"); t != "" {
		f.Type = &t
	}

	if e := values.Get("extraction_enabled"); e != "" {
		if v, err := strconv.ParseBool(e); err == nil {
			f.ExtractionEnabled = &v
		}
	}

	return f
}

func scanColumn(s repository.Scanner) (Column, error) {
	var c Column
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Prompt,
		&c.Type,
		&c.AIModel,
		&c.ExtractionEnabled,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

package documents

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/query"
	"github.com/docgrid/docgrid/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("project_id", "ProjectID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("extension", "Extension").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("status", "Status").
	Project("progress", "Progress").
	Project("error_message", "ErrorMessage").
	Project("error_code", "ErrorCode").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Status, ProjectID, ContentType, and Extension use
// exact matching; Filename uses case-insensitive contains matching.
type Filters struct {
	Status      *string    `json:"status,omitempty"`
	Filename    *string    `json:"filename,omitempty"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	ContentType *string    `json:"content_type,omitempty"`
	Extension   *string    `json:"extension,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("ProjectID", f.ProjectID).
		WhereEquals("ContentType", f.ContentType).
		WhereEquals("Extension", f.Extension)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if p := values.Get("project_id"); p != "" {
		if id, err := uuid.Parse(p); err == nil {
			f.ProjectID = &id
		}
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if ext := values.Get("extension"); ext != "" {
		f.Extension = &ext
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.ProjectID,
		&d.Filename,
		&d.ContentType,
		&d.Extension,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.Status,
		&d.Progress,
		&d.ErrorMessage,
		&d.ErrorCode,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	return d, err
}

type documentValue struct {
	ColumnID uuid.UUID
	ExtractedValue
}

func scanValue(s repository.Scanner) (documentValue, error) {
	var v documentValue
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
	)
	return v, err
}

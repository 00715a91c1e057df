// Package columns implements the column-definition domain for docgrid.
// A column declares one extractable field: a name, a free-text prompt, and a
// value type. The pipeline batches every enabled column into a single
// field-extraction call per document.
package columns

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ColumnType categorizes the value a column extracts.
type ColumnType string

// Supported column value types.
const (
	TypeText         ColumnType = "text"
	TypeDate         ColumnType = "date"
	TypePrice        ColumnType = "price"
	TypeLocation     ColumnType = "location"
	TypePerson       ColumnType = "person"
	TypeOrganization ColumnType = "organization"
	TypeStatus       ColumnType = "status"
	TypeCollection   ColumnType = "collection"
)

var columnTypes = []ColumnType{
	TypeText, TypeDate, TypePrice, TypeLocation,
	TypePerson, TypeOrganization, TypeStatus, TypeCollection,
}

// Valid reports whether t is a recognized column type.
func (t ColumnType) Valid() bool {
	return slices.Contains(columnTypes, t)
}

// Column represents a stored column definition.
type Column struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Prompt            string     `json:"prompt"`
	Type              ColumnType `json:"type"`
	AIModel           string     `json:"ai_model"`
	ExtractionEnabled bool       `json:"extraction_enabled"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateCommand carries the data needed to define a new column.
type CreateCommand struct {
	Name              string     `json:"name"`
	Prompt            string     `json:"prompt"`
	Type              ColumnType `json:"type"`
	AIModel           string     `json:"ai_model"`
	ExtractionEnabled *bool      `json:"extraction_enabled"`
}

// UpdateCommand carries editable column fields. Only name, prompt, model
// hint, and the extraction toggle may change once values reference a column;
// the value type is fixed at creation.
type UpdateCommand struct {
	Name              string `json:"name"`
	Prompt            string `json:"prompt"`
	AIModel           string `json:"ai_model"`
	ExtractionEnabled *bool  `json:"extraction_enabled"`
}

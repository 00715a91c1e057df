// Package audit implements the processing event sink. Events record
// lifecycle transitions and extraction outcomes per entity; recording is
// fire-and-forget so a sink failure never fails the operation it describes.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the processing pipeline.
const (
	ActionProcessingStarted   = "processing_started"
	ActionProcessingCompleted = "processing_completed"
	ActionProcessingFailed    = "processing_failed"
	ActionValuesExtracted     = "values_extracted"
	ActionValueSet            = "value_set"
	ActionAggregated          = "aggregated"
)

// Event is one recorded action against an entity.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	EntityID  uuid.UUID       `json:"entity_id"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

package audit

import (
	"context"

	"github.com/google/uuid"
)

// System defines the event sink contract. Record never returns an error:
// sink failures are logged and swallowed.
type System interface {
	Handler() *Handler

	Record(ctx context.Context, entityID uuid.UUID, action string, details map[string]any)
	Events(ctx context.Context, entityID uuid.UUID) ([]Event, error)
}

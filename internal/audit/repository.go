package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Postgres-backed event sink.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "audit"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Record(ctx context.Context, entityID uuid.UUID, action string, details map[string]any) {
	payload, err := json.Marshal(details)
	if err != nil {
		r.logger.Warn("audit details marshal failed",
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
		payload = []byte("{}")
	}

	_, err = r.db.ExecContext(
		ctx,
		"INSERT INTO processing_events(id, entity_id, action, details) VALUES ($1, $2, $3, $4)",
		uuid.New(), entityID, action, payload,
	)
	if err != nil {
		r.logger.Warn("audit record failed",
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

func (r *repo) Events(ctx context.Context, entityID uuid.UUID) ([]Event, error) {
	q := `
		SELECT id, entity_id, action, details, created_at
		FROM processing_events
		WHERE entity_id = $1
		ORDER BY created_at`

	events, err := repository.QueryMany(ctx, r.db, q, []any{entityID}, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return events, nil
}

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	err := s.Scan(&e.ID, &e.EntityID, &e.Action, &e.Details, &e.CreatedAt)
	return e, err
}

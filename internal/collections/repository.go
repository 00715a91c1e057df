package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/columns"
	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/pkg/pagination"
	"github.com/docgrid/docgrid/pkg/query"
	"github.com/docgrid/docgrid/pkg/repository"
)

const collectionColumns = `id, project_id, name, auto_aggregate, document_ids,
	aggregation_order, hidden_documents, created_at, updated_at`

const valueColumns = `column_id, value, value_type, status, confidence,
	extracted_at, method, model, version, aggregation_type, source_documents`

type repo struct {
	db         *sql.DB
	documents  documents.System
	columns    columns.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a collection repository implementing the System interface.
func New(
	db *sql.DB,
	docs documents.System,
	cols columns.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		documents:  docs,
		columns:    cols,
		logger:     logger.With("system", "collections"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Collection], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count collections: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	cols, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCollection)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}

	result := pagination.NewPageResult(cols, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Collection, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCollection)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Collection, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, ErrEmptyName
	}

	q := fmt.Sprintf(`
		INSERT INTO collections(id, project_id, name, document_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, collectionColumns)

	insertArgs := []any{uuid.New(), cmd.ProjectID, cmd.Name, marshalIDs(cmd.Documents)}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Collection, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanCollection)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("collection created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Collection, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if strings.TrimSpace(*cmd.Name) == "" {
			return nil, ErrEmptyName
		}
		current.Name = *cmd.Name
	}

	if cmd.Documents != nil {
		current.Documents = *cmd.Documents
	}

	if cmd.Settings != nil {
		current.Settings = *cmd.Settings
	}

	if err := validateSettings(current.Documents, current.Settings); err != nil {
		return nil, err
	}

	return r.save(ctx, current)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	// collection_values rows cascade via FK.
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM collections WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("collection deleted", "id", id)
	return nil
}

func (r *repo) AddDocument(ctx context.Context, id, documentID uuid.UUID) (*Collection, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if slices.Contains(current.Documents, documentID) {
		return current, nil
	}

	if _, err := r.documents.Find(ctx, documentID); err != nil {
		return nil, err
	}

	current.Documents = append(current.Documents, documentID)
	return r.save(ctx, current)
}

func (r *repo) RemoveDocument(ctx context.Context, id, documentID uuid.UUID) (*Collection, error) {
	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(current.Documents, documentID) {
		return nil, ErrNotMember
	}

	current.Documents = removeID(current.Documents, documentID)
	current.Settings.AggregationOrder = removeID(current.Settings.AggregationOrder, documentID)
	current.Settings.HiddenDocuments = removeID(current.Settings.HiddenDocuments, documentID)

	return r.save(ctx, current)
}

func (r *repo) save(ctx context.Context, c *Collection) (*Collection, error) {
	q := fmt.Sprintf(`
		UPDATE collections
		SET name = $2, auto_aggregate = $3, document_ids = $4,
			aggregation_order = $5, hidden_documents = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, collectionColumns)

	updateArgs := []any{
		c.ID,
		c.Name,
		c.Settings.AutoAggregate,
		marshalIDs(c.Documents),
		marshalIDs(c.Settings.AggregationOrder),
		marshalIDs(c.Settings.HiddenDocuments),
	}

	updated, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Collection, error) {
		return repository.QueryOne(ctx, tx, q, updateArgs, scanCollection)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("collection updated", "id", updated.ID, "documents", len(updated.Documents))
	return &updated, nil
}

func (r *repo) Values(ctx context.Context, id uuid.UUID) (map[uuid.UUID]AggregatedValue, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM collection_values
		WHERE collection_id = $1`, valueColumns)

	rows, err := repository.QueryMany(ctx, r.db, q, []any{id}, scanCollectionValue)
	if err != nil {
		return nil, fmt.Errorf("query collection values: %w", err)
	}

	values := make(map[uuid.UUID]AggregatedValue, len(rows))
	for _, row := range rows {
		values[row.ColumnID] = row.AggregatedValue
	}
	return values, nil
}

// Aggregate recomputes one column's aggregated value from the current
// per-document values and persists it. Unchanged inputs produce an
// identical result.
func (r *repo) Aggregate(ctx context.Context, id, columnID uuid.UUID) (*AggregatedValue, error) {
	c, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	column, err := r.columns.Find(ctx, columnID)
	if err != nil {
		if errors.Is(err, columns.ErrNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}

	values, err := r.columnValues(ctx, c.Documents, columnID)
	if err != nil {
		return nil, err
	}

	agg := Compute(c.Documents, c.Settings, values, string(column.Type))

	if err := r.storeValue(ctx, id, columnID, agg); err != nil {
		return nil, err
	}

	r.logger.Info("collection aggregated",
		"collection_id", id,
		"column_id", columnID,
		"type", agg.AggregationType,
		"sources", len(agg.SourceDocuments),
	)
	return &agg, nil
}

// AggregateForDocument recomputes every enabled column of every
// auto-aggregating collection that contains the document.
func (r *repo) AggregateForDocument(ctx context.Context, documentID uuid.UUID) error {
	q := fmt.Sprintf(`
		SELECT %s
		FROM collections
		WHERE auto_aggregate = TRUE AND document_ids @> $1::jsonb`, collectionColumns)

	member := marshalIDs([]uuid.UUID{documentID})
	affected, err := repository.QueryMany(ctx, r.db, q, []any{member}, scanCollection)
	if err != nil {
		return fmt.Errorf("query affected collections: %w", err)
	}

	if len(affected) == 0 {
		return nil
	}

	enabled, err := r.columns.Enabled(ctx)
	if err != nil {
		return err
	}

	for _, c := range affected {
		for _, column := range enabled {
			if _, err := r.Aggregate(ctx, c.ID, column.ID); err != nil {
				return fmt.Errorf("aggregate collection %s column %s: %w", c.ID, column.ID, err)
			}
		}
	}

	return nil
}

func (r *repo) columnValues(
	ctx context.Context,
	docs []uuid.UUID,
	columnID uuid.UUID,
) (map[uuid.UUID]documents.ExtractedValue, error) {
	values := make(map[uuid.UUID]documents.ExtractedValue, len(docs))

	for _, docID := range docs {
		v, err := r.documents.Value(ctx, docID, columnID)
		if err != nil {
			if errors.Is(err, documents.ErrValueNotFound) {
				continue
			}
			return nil, fmt.Errorf("read value for document %s: %w", docID, err)
		}
		values[docID] = *v
	}

	return values, nil
}

func (r *repo) storeValue(ctx context.Context, id, columnID uuid.UUID, agg AggregatedValue) error {
	q := `
		INSERT INTO collection_values(collection_id, column_id, value, value_type, status,
			confidence, extracted_at, method, model, version, aggregation_type, source_documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (collection_id, column_id) DO UPDATE
		SET value = EXCLUDED.value, value_type = EXCLUDED.value_type,
			status = EXCLUDED.status, confidence = EXCLUDED.confidence,
			extracted_at = EXCLUDED.extracted_at, method = EXCLUDED.method,
			model = EXCLUDED.model, version = EXCLUDED.version,
			aggregation_type = EXCLUDED.aggregation_type,
			source_documents = EXCLUDED.source_documents`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, execErr := tx.ExecContext(
			ctx, q,
			id, columnID, agg.Value, agg.Type, agg.Status, agg.Confidence,
			agg.ExtractedAt, agg.Method, agg.Model, agg.Version,
			agg.AggregationType, marshalIDs(agg.SourceDocuments),
		)
		return struct{}{}, execErr
	})

	if err != nil {
		return fmt.Errorf("store aggregated value: %w", err)
	}
	return nil
}

func validateSettings(docs []uuid.UUID, settings Settings) error {
	member := make(map[uuid.UUID]bool, len(docs))
	for _, id := range docs {
		member[id] = true
	}

	for _, id := range settings.AggregationOrder {
		if !member[id] {
			return fmt.Errorf("%w: %s in aggregation order", ErrInvalidSettings, id)
		}
	}

	for _, id := range settings.HiddenDocuments {
		if !member[id] {
			return fmt.Errorf("%w: %s in hidden documents", ErrInvalidSettings, id)
		}
	}

	return nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return slices.DeleteFunc(slices.Clone(ids), func(v uuid.UUID) bool {
		return v == id
	})
}

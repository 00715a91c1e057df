package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/pagination"
	"github.com/docgrid/docgrid/pkg/query"
	"github.com/docgrid/docgrid/pkg/repository"
	"github.com/docgrid/docgrid/pkg/storage"
)

const documentColumns = `id, project_id, filename, content_type, extension, size_bytes,
	page_count, storage_key, status, progress, error_message, error_code, uploaded_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.storage, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Pending(ctx context.Context) ([]Document, error) {
	pending := string(StatusPending)
	q, args := query.
		NewBuilder(projection, query.SortField{Field: "UploadedAt"}).
		WhereEquals("Status", &pending).
		Build()

	docs, err := repository.QueryMany(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query pending documents: %w", err)
	}
	return docs, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if len(cmd.Data) == 0 || cmd.Filename == "" {
		return nil, ErrInvalidFile
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO documents(id, project_id, filename, content_type, extension, size_bytes, page_count, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, documentColumns)

	insertArgs := []any{
		id,
		cmd.ProjectID,
		cmd.Filename,
		cmd.ContentType,
		fileExtension(cmd.Filename),
		int64(len(cmd.Data)),
		cmd.PageCount,
		key,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "filename", d.Filename)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) Values(ctx context.Context, id uuid.UUID) (map[uuid.UUID]ExtractedValue, error) {
	q := `
		SELECT column_id, value, value_type, status, confidence, extracted_at, method, model, version
		FROM document_values
		WHERE document_id = $1`

	rows, err := repository.QueryMany(ctx, r.db, q, []any{id}, scanValue)
	if err != nil {
		return nil, fmt.Errorf("query document values: %w", err)
	}

	values := make(map[uuid.UUID]ExtractedValue, len(rows))
	for _, row := range rows {
		values[row.ColumnID] = row.ExtractedValue
	}
	return values, nil
}

func (r *repo) Value(ctx context.Context, id, columnID uuid.UUID) (*ExtractedValue, error) {
	q := `
		SELECT column_id, value, value_type, status, confidence, extracted_at, method, model, version
		FROM document_values
		WHERE document_id = $1 AND column_id = $2`

	v, err := repository.QueryOne(ctx, r.db, q, []any{id, columnID}, scanValue)
	if err != nil {
		return nil, repository.MapError(err, ErrValueNotFound, ErrDuplicate)
	}
	return &v.ExtractedValue, nil
}

func (r *repo) SetValue(
	ctx context.Context,
	id, columnID uuid.UUID,
	cmd SetValueCommand,
) (*ExtractedValue, error) {
	confidence := 1.0
	if cmd.Confidence != nil {
		confidence = *cmd.Confidence
	}
	if confidence < 0 || confidence > 1 {
		return nil, ErrInvalidConfidence
	}
	if cmd.Status != nil {
		switch *cmd.Status {
		case ValueYes, ValueNo, ValuePending:
		default:
			return nil, ErrInvalidStatus
		}
	}

	q := `
		INSERT INTO document_values(document_id, column_id, value, value_type, status, confidence, extracted_at, method)
		SELECT $1, c.id, $3, c.type, $4, $5, NOW(), 'manual'
		FROM columns c WHERE c.id = $2
		ON CONFLICT (document_id, column_id) DO UPDATE
		SET value = EXCLUDED.value, value_type = EXCLUDED.value_type,
			status = EXCLUDED.status, confidence = EXCLUDED.confidence,
			extracted_at = EXCLUDED.extracted_at, method = EXCLUDED.method,
			model = NULL, version = NULL
		RETURNING column_id, value, value_type, status, confidence, extracted_at, method, model, version`

	setArgs := []any{id, columnID, cmd.Value, cmd.Status, confidence}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (documentValue, error) {
		return repository.QueryOne(ctx, tx, q, setArgs, scanValue)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrValueNotFound, ErrDuplicate)
	}

	r.logger.Info("document value set", "document_id", id, "column_id", columnID)
	return &v.ExtractedValue, nil
}

func (r *repo) PutValues(ctx context.Context, id uuid.UUID, writes []ValueWrite) error {
	if len(writes) == 0 {
		return nil
	}

	q := `
		INSERT INTO document_values(document_id, column_id, value, value_type, status, confidence, extracted_at, method, model, version)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, $8, $9)
		ON CONFLICT (document_id, column_id) DO UPDATE
		SET value = EXCLUDED.value, value_type = EXCLUDED.value_type,
			status = EXCLUDED.status, confidence = EXCLUDED.confidence,
			extracted_at = EXCLUDED.extracted_at, method = EXCLUDED.method,
			model = EXCLUDED.model, version = EXCLUDED.version
		WHERE document_values.method <> 'manual'`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, w := range writes {
			if w.Confidence < 0 || w.Confidence > 1 {
				return struct{}{}, fmt.Errorf("%w: column %s", ErrInvalidConfidence, w.ColumnID)
			}
			if _, err := tx.ExecContext(
				ctx, q,
				id, w.ColumnID, w.Value, w.Type, w.Status, w.Confidence, w.Method, w.Model, w.Version,
			); err != nil {
				return struct{}{}, fmt.Errorf("write value for column %s: %w", w.ColumnID, err)
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document values written", "document_id", id, "count", len(writes))
	return nil
}

// BeginProcessing atomically transitions a document into processing. The
// conditional UPDATE is the concurrency guard: it matches only when the
// current status is not already processing, so exactly one of two racing
// callers wins.
func (r *repo) BeginProcessing(ctx context.Context, id uuid.UUID) (*Document, error) {
	q := fmt.Sprintf(`
		UPDATE documents
		SET status = 'processing', progress = 0,
			error_message = NULL, error_code = NULL, updated_at = NOW()
		WHERE id = $1 AND status <> 'processing'
		RETURNING %s`, documentColumns)

	d, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanDocument)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, findErr := r.Find(ctx, id); findErr != nil {
				return nil, findErr
			}
			return nil, ErrAlreadyProcessing
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document processing started", "id", id)
	return &d, nil
}

func (r *repo) SetProgress(ctx context.Context, id uuid.UUID, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE documents SET progress = $1, updated_at = NOW() WHERE id = $2 AND status = 'processing'",
		progress, id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) CompleteProcessing(ctx context.Context, id uuid.UUID) (*Document, error) {
	q := fmt.Sprintf(`
		UPDATE documents
		SET status = 'completed', progress = 100, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'
		RETURNING %s`, documentColumns)

	d, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document processing completed", "id", id)
	return &d, nil
}

func (r *repo) FailProcessing(
	ctx context.Context,
	id uuid.UUID,
	perr ProcessingError,
) (*Document, error) {
	q := fmt.Sprintf(`
		UPDATE documents
		SET status = 'failed', progress = 100,
			error_message = $2, error_code = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'
		RETURNING %s`, documentColumns)

	d, err := repository.QueryOne(ctx, r.db, q, []any{id, perr.Message, perr.Code}, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Warn("document processing failed",
		"id", id,
		"code", perr.Code,
		"message", perr.Message,
	)
	return &d, nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}

func fileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

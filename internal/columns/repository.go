package columns

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/pagination"
	"github.com/docgrid/docgrid/pkg/query"
	"github.com/docgrid/docgrid/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a column repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "columns"),
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
) (*pagination.PageResult[Column], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Prompt")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count columns: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	cols, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanColumn)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	result := pagination.NewPageResult(cols, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Column, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanColumn)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Enabled(ctx context.Context) ([]Column, error) {
	enabled := true
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("ExtractionEnabled", &enabled).
		Build()

	cols, err := repository.QueryMany(ctx, r.db, q, args, scanColumn)
	if err != nil {
		return nil, fmt.Errorf("query enabled columns: %w", err)
	}
	return cols, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Column, error) {
	if err := validateCreate(&cmd); err != nil {
		return nil, err
	}

	enabled := true
	if cmd.ExtractionEnabled != nil {
		enabled = *cmd.ExtractionEnabled
	}

	q := `
		INSERT INTO columns(id, name, prompt, type, ai_model, extraction_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, prompt, type, ai_model, extraction_enabled, created_at, updated_at`

	insertArgs := []any{
		uuid.New(),
		cmd.Name,
		cmd.Prompt,
		cmd.Type,
		cmd.AIModel,
		enabled,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Column, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanColumn)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("column created", "id", c.ID, "name", c.Name, "type", c.Type)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Column, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(cmd.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	q := `
		UPDATE columns
		SET name = $1, prompt = $2, ai_model = $3,
			extraction_enabled = COALESCE($4, extraction_enabled),
			updated_at = NOW()
		WHERE id = $5
		RETURNING id, name, prompt, type, ai_model, extraction_enabled, created_at, updated_at`

	updateArgs := []any{cmd.Name, cmd.Prompt, cmd.AIModel, cmd.ExtractionEnabled, id}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Column, error) {
		return repository.QueryOne(ctx, tx, q, updateArgs, scanColumn)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("column updated", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	// document_values and collection_values rows cascade via FK,
	// which clears the column's key from every extracted-value map.
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM columns WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("column deleted", "id", id)
	return nil
}

func validateCreate(cmd *CreateCommand) error {
	if strings.TrimSpace(cmd.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(cmd.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if cmd.Type == "" {
		cmd.Type = TypeText
	}
	if !cmd.Type.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidType, cmd.Type)
	}
	return nil
}

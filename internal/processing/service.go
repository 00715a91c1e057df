package processing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docgrid/docgrid/internal/audit"
	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/extraction"
	"github.com/docgrid/docgrid/internal/workflow"
)

// Options configures the processing service.
type Options struct {
	CallTimeout time.Duration
	Concurrency int
	Stagger     time.Duration
}

type service struct {
	documents  documents.System
	audit      audit.System
	runner     Runner
	aggregator Aggregator
	opts       Options
	logger     *slog.Logger
}

// New creates the processing service. aggregator may be nil to disable
// auto-aggregation after completion.
func New(
	docs documents.System,
	sink audit.System,
	runner Runner,
	aggregator Aggregator,
	opts Options,
	logger *slog.Logger,
) System {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &service{
		documents:  docs,
		audit:      sink,
		runner:     runner,
		aggregator: aggregator,
		opts:       opts,
		logger:     logger.With("system", "processing"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Start transitions the document into processing and runs extraction to a
// terminal state. The conditional transition is the concurrency guard: a
// document already processing fails fast with ErrAlreadyProcessing and its
// state is left untouched.
func (s *service) Start(ctx context.Context, id uuid.UUID, trigger Trigger) (*documents.Document, error) {
	if _, err := s.documents.BeginProcessing(ctx, id); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, id, audit.ActionProcessingStarted, map[string]any{
		"trigger": string(trigger),
	})

	return s.run(ctx, id)
}

func (s *service) Reprocess(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	return s.Start(ctx, id, TriggerManual)
}

// ProcessPending runs extraction for every pending document with bounded
// concurrency. Starts are staggered as a throughput courtesy toward the
// completion service. Per-document failures are reported in the results,
// never aborting the batch.
func (s *service) ProcessPending(ctx context.Context) ([]BulkResult, error) {
	pending, err := s.documents.Pending(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]BulkResult, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, doc := range pending {
		if i > 0 && s.opts.Stagger > 0 {
			select {
			case <-time.After(s.opts.Stagger):
			case <-gctx.Done():
			}
		}

		g.Go(func() error {
			results[i] = s.processOne(gctx, doc.ID)
			return nil
		})
	}

	g.Wait()

	s.logger.Info("bulk processing complete", "documents", len(results))
	return results, nil
}

func (s *service) processOne(ctx context.Context, id uuid.UUID) BulkResult {
	result := BulkResult{DocumentID: id}

	doc, err := s.Start(ctx, id, TriggerBulk)
	if err != nil {
		result.Error = err.Error()
		if errors.Is(err, documents.ErrAlreadyProcessing) {
			result.Status = documents.StatusProcessing
		}
		return result
	}

	result.Status = doc.Status
	if doc.ErrorMessage != nil {
		result.Error = *doc.ErrorMessage
	}
	return result
}

// run executes the workflow and settles the document into completed or
// failed. Extraction failures are absorbed into document state; they do not
// surface as errors to the caller.
func (s *service) run(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	runCtx := ctx
	if s.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()
	}

	result, err := s.runner.Run(runCtx, id)
	if err != nil {
		return s.fail(ctx, id, err)
	}

	writes, preserved, err := s.dropManual(ctx, id, result.Writes)
	if err != nil {
		return s.fail(ctx, id, err)
	}

	if err := s.documents.PutValues(ctx, id, writes); err != nil {
		return s.fail(ctx, id, err)
	}

	s.audit.Record(ctx, id, audit.ActionValuesExtracted, map[string]any{
		"kind":      string(result.Kind),
		"fields":    len(writes),
		"preserved": preserved,
		"malformed": result.Malformed,
		"truncated": result.Truncated,
		"attempts":  result.Attempts,
	})

	doc, err := s.documents.CompleteProcessing(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, id, audit.ActionProcessingCompleted, map[string]any{
		"fields": len(writes),
	})

	s.aggregate(ctx, id)

	return doc, nil
}

// dropManual removes writes for columns that hold a manual override, so a
// reprocess never clobbers operator-entered values.
func (s *service) dropManual(ctx context.Context, id uuid.UUID, writes []documents.ValueWrite) ([]documents.ValueWrite, int, error) {
	existing, err := s.documents.Values(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	kept := make([]documents.ValueWrite, 0, len(writes))
	preserved := 0
	for _, w := range writes {
		if v, ok := existing[w.ColumnID]; ok && v.Method == documents.MethodManual {
			preserved++
			continue
		}
		kept = append(kept, w)
	}

	return kept, preserved, nil
}

func (s *service) fail(ctx context.Context, id uuid.UUID, runErr error) (*documents.Document, error) {
	perr := documents.ProcessingError{
		Message: runErr.Error(),
		Code:    errorCode(runErr),
	}

	doc, err := s.documents.FailProcessing(ctx, id, perr)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, id, audit.ActionProcessingFailed, map[string]any{
		"message": perr.Message,
		"code":    perr.Code,
	})

	return doc, nil
}

func (s *service) aggregate(ctx context.Context, id uuid.UUID) {
	if s.aggregator == nil {
		return
	}

	if err := s.aggregator.AggregateForDocument(ctx, id); err != nil {
		s.logger.Warn("auto-aggregation failed", "document_id", id, "error", err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, extraction.ErrContentUnavailable):
		return CodeContentUnavailable
	case errors.Is(err, extraction.ErrUnusableContent):
		return CodeUnusableContent
	case errors.Is(err, extraction.ErrCompletionFailed),
		errors.Is(err, context.DeadlineExceeded):
		return CodeAIUnreachable
	case errors.Is(err, workflow.ErrNoColumns):
		return CodeNoColumns
	default:
		return CodeExtractionError
	}
}

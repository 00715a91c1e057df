package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/docgrid/docgrid/internal/extraction"
)

const sourceFile = "source"

// FetchNode returns a state node that loads the document record, resolves
// the extraction-enabled column set, routes the content kind, and downloads
// the blob into the temp directory.
func FetchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		documentID, tempDir, err := extractFetchState(s)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		doc, err := rt.Documents.Find(ctx, documentID)
		if err != nil {
			return s, fmt.Errorf("fetch: %w: %w", ErrDocumentNotFound, err)
		}

		cols, err := enabledColumns(ctx, rt)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		sourcePath, err := downloadSource(ctx, rt, doc.StorageKey, tempDir)
		if err != nil {
			return s, fmt.Errorf("fetch: %w", err)
		}

		kind := extraction.Classify(doc.ContentType, doc.Extension)

		if err := rt.Documents.SetProgress(ctx, documentID, progressFetched); err != nil {
			rt.Logger.Warn("progress update failed", "document_id", documentID, "error", err)
		}

		rt.Logger.InfoContext(
			ctx, "fetch node complete",
			"document_id", documentID,
			"kind", kind,
			"columns", len(cols),
		)

		s = s.Set(KeyPipeState, PipelineState{
			Document:   *doc,
			Kind:       kind,
			Columns:    cols,
			SourcePath: sourcePath,
		})
		return s, nil
	})
}

func extractFetchState(s state.State) (uuid.UUID, string, error) {
	docIDVal, ok := s.Get(KeyDocumentID)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("%w: missing %s in state", ErrDocumentNotFound, KeyDocumentID)
	}

	documentID, ok := docIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("%w: %s is not uuid.UUID", ErrDocumentNotFound, KeyDocumentID)
	}

	tempDirVal, ok := s.Get(KeyTempDir)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("%w: missing %s in state", ErrFetchFailed, KeyTempDir)
	}

	tempDir, ok := tempDirVal.(string)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("%w: %s is not string", ErrFetchFailed, KeyTempDir)
	}

	return documentID, tempDir, nil
}

func enabledColumns(ctx context.Context, rt *Runtime) ([]extraction.Column, error) {
	enabled, err := rt.Columns.Enabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled columns: %w", err)
	}

	if len(enabled) == 0 {
		return nil, ErrNoColumns
	}

	cols := make([]extraction.Column, len(enabled))
	for i, c := range enabled {
		cols[i] = extraction.Column{
			ID:     c.ID,
			Name:   c.Name,
			Prompt: c.Prompt,
			Type:   string(c.Type),
		}
	}
	return cols, nil
}

func downloadSource(ctx context.Context, rt *Runtime, key, tempDir string) (string, error) {
	blob, err := rt.Storage.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %w", ErrFetchFailed, extraction.ErrContentUnavailable, err)
	}
	defer blob.Body.Close()

	sourcePath := filepath.Join(tempDir, sourceFile)
	f, err := os.Create(sourcePath)
	if err != nil {
		return "", fmt.Errorf("%w: create temp source: %w", ErrFetchFailed, err)
	}

	if _, err := io.Copy(f, blob.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: %w: write temp source: %w", ErrFetchFailed, extraction.ErrContentUnavailable, err)
	}
	f.Close()

	return sourcePath, nil
}

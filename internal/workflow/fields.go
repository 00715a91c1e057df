package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/docgrid/docgrid/internal/extraction"
)

// FieldsNode returns a state node that issues the single batched
// field-extraction call: text for the pdf path, a data-URI of the raw
// content for the image and best-effort unknown paths.
func FieldsNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ps, err := pipelineState(s)
		if err != nil {
			return s, fmt.Errorf("fields: %w", err)
		}

		result, err := extractFields(ctx, rt, ps)
		if err != nil {
			return s, fmt.Errorf("fields: %w: %w", ErrFieldsFailed, err)
		}

		ps.Result = result

		if err := rt.Documents.SetProgress(ctx, ps.Document.ID, progressFields); err != nil {
			rt.Logger.Warn("progress update failed", "document_id", ps.Document.ID, "error", err)
		}

		rt.Logger.InfoContext(
			ctx, "fields node complete",
			"document_id", ps.Document.ID,
			"fields", len(result.Fields),
			"malformed", result.Malformed,
			"truncated", result.Truncated,
		)

		s = s.Set(KeyPipeState, *ps)
		return s, nil
	})
}

func extractFields(ctx context.Context, rt *Runtime, ps *PipelineState) (*extraction.Result, error) {
	if ps.Kind == extraction.KindPDF {
		return rt.Client.ExtractFromText(ctx, ps.Text, ps.Columns)
	}

	dataURI, err := encodeSource(ps.SourcePath)
	if err != nil {
		return nil, err
	}

	return rt.Client.ExtractFromImage(ctx, dataURI, ps.Columns)
}

func encodeSource(sourcePath string) (string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}

	dataURI, err := encoding.EncodeImageDataURI(data, document.PNG)
	if err != nil {
		return "", fmt.Errorf("encode source: %w", err)
	}

	return dataURI, nil
}

package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/extraction"
)

// FinalizeNode returns a state node that assembles per-column value writes
// from the fields result, stamping each with ai-method provenance and the
// version marker for the routed content kind.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ps, err := pipelineState(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		ps.Writes = buildWrites(rt, ps)

		result := WorkflowResult{
			DocumentID:  ps.Document.ID,
			Kind:        ps.Kind,
			Fields:      len(ps.Writes),
			Malformed:   ps.Result != nil && ps.Result.Malformed,
			Truncated:   ps.Result != nil && ps.Result.Truncated,
			Writes:      ps.Writes,
			CompletedAt: time.Now().UTC(),
		}

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"document_id", ps.Document.ID,
			"fields", result.Fields,
		)

		s = s.Set(KeyPipeState, *ps)
		s = s.Set(KeyResult, result)
		return s, nil
	})
}

func buildWrites(rt *Runtime, ps *PipelineState) []documents.ValueWrite {
	if ps.Result == nil {
		return nil
	}

	typeByID := make(map[string]string, len(ps.Columns))
	for _, c := range ps.Columns {
		typeByID[c.ID.String()] = c.Type
	}

	version := extraction.ProvenanceVersion(ps.Kind)
	model := rt.Model

	writes := make([]documents.ValueWrite, len(ps.Result.Fields))
	for i, f := range ps.Result.Fields {
		writes[i] = documents.ValueWrite{
			ColumnID:   f.ColumnID,
			Value:      f.Value,
			Type:       typeByID[f.ColumnID.String()],
			Confidence: f.Confidence,
			Method:     documents.MethodAI,
			Model:      &model,
			Version:    &version,
		}
	}
	return writes
}

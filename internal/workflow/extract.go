package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// ExtractNode returns a state node that runs the text-extraction strategy
// chain over the downloaded source. Only the pdf path reaches this node.
// Chain exhaustion propagates: without text the fields call cannot run.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ps, err := pipelineState(s)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		text, attempts, err := rt.Chain.Extract(ctx, ps.SourcePath)
		ps.Attempts = attempts
		if err != nil {
			s = s.Set(KeyPipeState, *ps)
			return s, fmt.Errorf("extract: %w: %w", ErrExtractFailed, err)
		}

		ps.Text = text

		if err := rt.Documents.SetProgress(ctx, ps.Document.ID, progressExtracted); err != nil {
			rt.Logger.Warn("progress update failed", "document_id", ps.Document.ID, "error", err)
		}

		rt.Logger.InfoContext(
			ctx, "extract node complete",
			"document_id", ps.Document.ID,
			"chars", len(text),
			"attempts", len(attempts),
		)

		s = s.Set(KeyPipeState, *ps)
		return s, nil
	})
}

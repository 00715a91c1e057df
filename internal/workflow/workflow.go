package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/docgrid/docgrid/internal/extraction"
)

// Execute runs the extraction workflow for a single document. It creates a
// temp directory for the downloaded source (cleaned up via defer), builds
// the state graph (fetch → extract? → fields → finalize), executes it, and
// extracts the WorkflowResult from the final state.
func Execute(ctx context.Context, rt *Runtime, documentID uuid.UUID) (*WorkflowResult, error) {
	tempDir, err := os.MkdirTemp("", "docgrid-extract-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyDocumentID, documentID)
	initialState = initialState.Set(KeyTempDir, tempDir)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("docgrid-extract")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("fetch", FetchNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("extract", ExtractNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("fields", FieldsNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// fetch → extract (pdf path: text must exist before the fields call)
	if err := graph.AddEdge("fetch", "extract", needsText); err != nil {
		return nil, err
	}

	// fetch → fields (image and unknown ride the vision path directly)
	if err := graph.AddEdge("fetch", "fields", state.Not(needsText)); err != nil {
		return nil, err
	}

	// extract → fields (unconditional)
	if err := graph.AddEdge("extract", "fields", nil); err != nil {
		return nil, err
	}

	// fields → finalize (unconditional)
	if err := graph.AddEdge("fields", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("fetch"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func needsText(s state.State) bool {
	ps, err := pipelineState(s)
	if err != nil {
		return false
	}
	return ps.Kind == extraction.KindPDF
}

func pipelineState(s state.State) (*PipelineState, error) {
	val, ok := s.Get(KeyPipeState)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyPipeState)
	}

	ps, ok := val.(PipelineState)
	if !ok {
		return nil, fmt.Errorf("%s is not PipelineState", KeyPipeState)
	}

	return &ps, nil
}

func extractResult(s state.State) (*WorkflowResult, error) {
	ps, err := pipelineState(s)
	if err != nil {
		return nil, fmt.Errorf("extract result: %w", err)
	}

	val, ok := s.Get(KeyResult)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyResult)
	}

	result, ok := val.(WorkflowResult)
	if !ok {
		return nil, fmt.Errorf("%s is not WorkflowResult", KeyResult)
	}

	result.Attempts = ps.Attempts
	return &result, nil
}

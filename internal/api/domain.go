package api

import (
	"github.com/docgrid/docgrid/internal/audit"
	"github.com/docgrid/docgrid/internal/collections"
	"github.com/docgrid/docgrid/internal/columns"
	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/extraction"
	"github.com/docgrid/docgrid/internal/processing"
	"github.com/docgrid/docgrid/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Columns     columns.System
	Documents   documents.System
	Collections collections.System
	Audit       audit.System
	Processing  processing.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	columnsSystem := columns.New(db, runtime.Logger, runtime.Pagination)

	documentsSystem := documents.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	auditSystem := audit.New(db, runtime.Logger)

	collectionsSystem := collections.New(
		db,
		documentsSystem,
		columnsSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	completer, err := extraction.NewAgentCompleter(&runtime.Agent)
	if err != nil {
		return nil, err
	}

	chain := extraction.NewChain(extraction.ChainOptions{
		MinTextLength: runtime.Extraction.MinTextLength,
		OCRMaxPages:   runtime.Extraction.OCRMaxPages,
		OCRBinary:     runtime.Extraction.OCRBinary,
		OCRLanguage:   runtime.Extraction.OCRLanguage,
	}, runtime.Logger)

	client := extraction.NewClient(completer, runtime.Extraction.MaxTextChars, runtime.Logger)

	workflowRuntime := &workflow.Runtime{
		Storage:   runtime.Storage,
		Documents: documentsSystem,
		Columns:   columnsSystem,
		Chain:     chain,
		Client:    client,
		Model:     runtime.Agent.Model.Name,
		Logger:    runtime.Logger,
	}

	processingSystem := processing.New(
		documentsSystem,
		auditSystem,
		processing.NewRunner(workflowRuntime),
		collectionsSystem,
		processing.Options{
			CallTimeout: runtime.Extraction.CallTimeoutDuration(),
			Concurrency: runtime.Extraction.BulkConcurrency,
			Stagger:     runtime.Extraction.BulkStaggerDuration(),
		},
		runtime.Logger,
	)

	return &Domain{
		Columns:     columnsSystem,
		Documents:   documentsSystem,
		Collections: collectionsSystem,
		Audit:       auditSystem,
		Processing:  processingSystem,
	}, nil
}

package workflow

import (
	"log/slog"

	"github.com/docgrid/docgrid/internal/columns"
	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/internal/extraction"
	"github.com/docgrid/docgrid/pkg/storage"
)

// Runtime bundles the dependencies that workflow nodes require. It is
// constructed by higher-level composition code from Infrastructure and
// Domain systems.
type Runtime struct {
	Storage   storage.System
	Documents documents.System
	Columns   columns.System
	Chain     *extraction.Chain
	Client    *extraction.Client
	Model     string
	Logger    *slog.Logger
}

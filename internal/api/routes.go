package api

import (
	"net/http"

	"github.com/docgrid/docgrid/internal/config"
	"github.com/docgrid/docgrid/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Columns.Handler().Routes(),
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Collections.Handler().Routes(),
		domain.Processing.Handler().Routes(),
		domain.Audit.Handler().Routes(),
	)
}

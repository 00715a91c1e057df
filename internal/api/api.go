// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/docgrid/docgrid/internal/config"
	"github.com/docgrid/docgrid/internal/infrastructure"
	"github.com/docgrid/docgrid/pkg/middleware"
	"github.com/docgrid/docgrid/pkg/module"
	"github.com/docgrid/docgrid/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	specBytes, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return nil, err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}

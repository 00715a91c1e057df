package audit

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/handlers"
	"github.com/docgrid/docgrid/pkg/routes"
)

// Handler exposes the per-document event trail.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "audit"),
	}
}

// Routes returns the route group definition for event endpoints. The group
// shares the /documents prefix with the document handler; patterns are
// disjoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/events", Handler: h.Events},
		},
	}
}

// Events returns the ordered event trail for a document.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	events, err := h.sys.Events(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}

package processing

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/documents"
	"github.com/docgrid/docgrid/pkg/handlers"
	"github.com/docgrid/docgrid/pkg/routes"
)

// Handler provides HTTP endpoints for processing operations. The group
// shares the /documents prefix with the document handler; patterns are
// disjoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "processing"),
	}
}

// Routes returns the route group definition for processing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/process", Handler: h.Process},
			{Method: "POST", Pattern: "/{id}/reprocess", Handler: h.Reprocess},
			{Method: "POST", Pattern: "/process-pending", Handler: h.ProcessPending},
		},
	}
}

// Process starts a processing run and blocks until the document reaches a
// terminal state. A document already mid-run responds 409. The optional
// trigger query parameter distinguishes upload-auto starts from manual ones.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	trigger := TriggerManual
	if t := Trigger(r.URL.Query().Get("trigger")); t != "" {
		if !t.Valid() {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidTrigger)
			return
		}
		trigger = t
	}

	doc, err := h.sys.Start(r.Context(), id, trigger)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Reprocess re-enters processing from a terminal state.
func (h *Handler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Reprocess(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// ProcessPending runs extraction for every pending document and reports
// per-document outcomes.
func (h *Handler) ProcessPending(w http.ResponseWriter, r *http.Request) {
	results, err := h.sys.ProcessPending(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

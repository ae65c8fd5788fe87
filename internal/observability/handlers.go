package observability

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/outreach-gateway/internal/pkg/httputil"
)

// Handlers exposes the super-admin metrics surface named in §6:
// read the live counter snapshot, or flush it (persist + reset + export).
// Like replay.Handlers and reconciliation.Handlers, scope/role enforcement
// is assumed to run in the auth middleware upstream of this mount point.
type Handlers struct {
	registry *Registry
}

func NewHandlers(registry *Registry) *Handlers {
	return &Handlers{registry: registry}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/super-admin/observability/metrics-snapshots", h.handleSnapshot)
	r.Post("/super-admin/observability/metrics-snapshots/flush", h.handleFlush)
}

func (h *Handlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"counters": h.registry.Snapshot()})
}

func (h *Handlers) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.PersistSnapshot(r.Context(), "manual_flush", true); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

package replay

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// Handlers exposes the operator-facing (super-admin scoped) dead-letter
// and replay surface named in §4.8 and §4.14. Scope/role enforcement
// itself lives in the auth middleware upstream — this layer assumes every
// request reaching it is already super-admin authorized.
type Handlers struct {
	controller *Controller
}

func NewHandlers(controller *Controller) *Handlers {
	return &Handlers{controller: controller}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/webhooks/events", h.handleList)
	r.Get("/webhooks/dead-letters/{eventKey}", h.handleDetail)
	r.Post("/webhooks/dead-letters/replay", h.handleReplayOne)
	r.Post("/webhooks/replay-query", h.handleReplayQuery)
	r.Post("/webhooks/dead-letters/bulk-replay", h.handleBulkReplayKeys)
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		ProviderSlug: q.Get("provider_slug"),
		Reason:       q.Get("reason"),
		ReplayStatus: defaultString(q.Get("replay_status"), "all"),
		OrgID:        q.Get("org_id"),
		Limit:        parseIntDefault(q.Get("limit"), 50),
		Offset:       parseIntDefault(q.Get("offset"), 0),
	}
	if v := q.Get("from_ts"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.FromTS = t
		}
	}
	if v := q.Get("to_ts"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.ToTS = t
		}
	}

	events, total, err := h.controller.List(r.Context(), f)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"type": "internal_error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "total": total})
}

func (h *Handlers) handleDetail(w http.ResponseWriter, r *http.Request) {
	eventKey := chi.URLParam(r, "eventKey")
	providerSlug := r.URL.Query().Get("provider_slug")
	event, err := h.controller.Detail(r.Context(), providerSlug, eventKey)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"type": "not_found", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handlers) handleReplayOne(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderSlug string `json:"provider_slug"`
		EventKey     string `json:"event_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "bad_request", "message": err.Error()})
		return
	}
	outcome := h.controller.ReplayOne(r.Context(), req.ProviderSlug, req.EventKey)
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handlers) handleBulkReplayKeys(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderSlug string   `json:"provider_slug"`
		EventKeys    []string `json:"event_keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "bad_request", "message": err.Error()})
		return
	}
	outcomes, err := h.controller.BulkReplay(r.Context(), req.ProviderSlug, req.EventKeys)
	if err == ErrTooManyEvents {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "max_events_per_run_exceeded", "message": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"type": "internal_error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func (h *Handlers) handleReplayQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderSlug string `json:"provider_slug"`
		Reason       string `json:"reason"`
		ReplayStatus string `json:"replay_status"`
		OrgID        string `json:"org_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "bad_request", "message": err.Error()})
		return
	}
	outcomes, err := h.controller.BulkReplayByQuery(r.Context(), ListFilter{
		ProviderSlug: req.ProviderSlug,
		Reason:       req.Reason,
		ReplayStatus: defaultString(req.ReplayStatus, "pending"),
		OrgID:        req.OrgID,
	})
	if err == ErrTooManyEvents {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "max_events_per_run_exceeded", "message": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"type": "internal_error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

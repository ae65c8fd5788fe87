package reconciliation

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers exposes the super-admin reconciliation trigger and the
// scheduler-authenticated variant that a cron invokes headlessly (§4.9).
type Handlers struct {
	sweeper         *Sweeper
	schedulerSecret string
}

func NewHandlers(sweeper *Sweeper, schedulerSecret string) *Handlers {
	return &Handlers{sweeper: sweeper, schedulerSecret: schedulerSecret}
}

// RegisterRoutes mounts both routes directly, for callers that apply a
// single uniform middleware stack (e.g. tests). main.go instead mounts
// HandleRun and HandleRunScheduled separately, since the two need
// different gating: HandleRun sits behind the tenant super-admin group,
// HandleRunScheduled authenticates itself via the shared secret and must
// stay reachable by a cron with no tenant session at all.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/internal/reconciliation/campaigns-leads", h.HandleRun)
	r.Post("/internal/reconciliation/run-scheduled", h.HandleRunScheduled)
}

// HandleRun is the super-admin-triggered reconciliation sweep. Role/scope
// enforcement is expected from the middleware group it is mounted under.
func (h *Handlers) HandleRun(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRunRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "bad_request", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.sweeper.Run(r.Context(), req))
}

// HandleRunScheduled requires X-Internal-Scheduler-Secret to match the
// configured secret via constant-time comparison; a missing configured
// secret means the endpoint is disabled entirely (503), distinct from a
// wrong header value (401) — mirrors the shared-secret check a scheduler
// uses to call this endpoint without a human session.
func (h *Handlers) HandleRunScheduled(w http.ResponseWriter, r *http.Request) {
	if h.schedulerSecret == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"type": "scheduler_secret_not_configured"})
		return
	}
	got := r.Header.Get("X-Internal-Scheduler-Secret")
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.schedulerSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"type": "invalid_scheduler_secret"})
		return
	}

	req, err := decodeRunRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"type": "bad_request", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.sweeper.Run(r.Context(), req))
}

func decodeRunRequest(r *http.Request) (RunRequest, error) {
	var body struct {
		ProviderSlug  string `json:"provider_slug"`
		OrgID         string `json:"org_id"`
		CompanyID     string `json:"company_id"`
		DryRun        bool   `json:"dry_run"`
		CampaignLimit int    `json:"campaign_limit"`
		LeadLimit     int    `json:"lead_limit"`
		MessageLimit  int    `json:"message_limit"`
	}
	if r.ContentLength == 0 {
		return RunRequest{}, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return RunRequest{}, err
	}
	return RunRequest{
		ProviderSlug: body.ProviderSlug,
		OrgID:        body.OrgID,
		CompanyID:    body.CompanyID,
		DryRun:       body.DryRun,
		Limits: Limits{
			CampaignLimit: body.CampaignLimit,
			LeadLimit:     body.LeadLimit,
			MessageLimit:  body.MessageLimit,
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

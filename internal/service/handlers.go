package service

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/identity"
	"github.com/ignite/outreach-gateway/internal/pkg/httputil"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
)

// Handlers mounts the tenant-facing Domain Write Service routes. Every
// handler resolves scope via identity.ResolveRequest before touching a
// service method, matching the "Authorize via §4.4" first step every write
// operation names.
type Handlers struct {
	Campaigns *CampaignService
	Leads     *LeadService
	Messages  *MessageService
	Pieces    *PieceService
}

func NewHandlers(campaigns *CampaignService, leads *LeadService, messages *MessageService, pieces *PieceService) *Handlers {
	return &Handlers{Campaigns: campaigns, Leads: leads, Messages: messages, Pieces: pieces}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/campaigns", h.createCampaign)
	r.Post("/campaigns/{campaignID}/status", h.setCampaignStatus)
	r.Get("/campaigns/{campaignID}/sequence", h.getSequence)
	r.Put("/campaigns/{campaignID}/sequence", h.saveSequence)

	r.Post("/campaigns/{campaignID}/leads", h.addLeads)
	r.Delete("/campaigns/{campaignID}/leads/{externalLeadID}", h.removeLead)
	r.Patch("/campaigns/{campaignID}/leads/{externalLeadID}", h.mutateLead)

	r.Get("/campaigns/{campaignID}/messages", h.listMessages)
	r.Get("/campaigns/{campaignID}/analytics", h.analytics)
	r.Get("/inboxes", h.listInboxes)
	r.Post("/inboxes/{externalAccountID}/warmup", h.setWarmup)

	r.Post("/direct-mail/pieces", h.createPiece)
	r.Get("/direct-mail/pieces", h.listPieces)
	r.Post("/direct-mail/pieces/{pieceID}/cancel", h.cancelPiece)
}

func (h *Handlers) createCampaign(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var body struct {
		Name       string `json:"name"`
		Capability string `json:"capability"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	campaign, err := h.Campaigns.Create(r.Context(), scope.OrgID, scope.CompanyID, body.Name, domain.Capability(body.Capability))
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.Created(w, campaign)
}

func (h *Handlers) setCampaignStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	campaign, err := h.Campaigns.SetStatus(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"), domain.CampaignStatus(body.Status))
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.OK(w, campaign)
}

func (h *Handlers) getSequence(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	seq, err := h.Campaigns.GetSequence(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.OK(w, seq)
}

func (h *Handlers) saveSequence(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var body map[string]any
	if !httputil.Decode(w, r, &body) {
		return
	}
	if err := h.Campaigns.SaveSequence(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"), body); err != nil {
		WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) addLeads(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var body struct {
		Leads []provideradapter.LeadRecord `json:"leads"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if err := h.Leads.Add(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"), body.Leads); err != nil {
		WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) removeLead(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.Leads.Remove(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"), chi.URLParam(r, "externalLeadID")); err != nil {
		WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) mutateLead(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var fields map[string]any
	if !httputil.Decode(w, r, &fields) {
		return
	}
	if err := h.Leads.Mutate(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"), chi.URLParam(r, "externalLeadID"), fields); err != nil {
		WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	msgs, err := h.Messages.ListMessages(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"), limit, offset)
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.OK(w, msgs)
}

func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	a, err := h.Messages.Analytics(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "campaignID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.OK(w, a)
}

func (h *Handlers) listInboxes(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	capability := domain.Capability(r.URL.Query().Get("capability"))
	inboxes, err := h.Messages.ListInboxes(r.Context(), scope.OrgID, scope.CompanyID, capability)
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.OK(w, inboxes)
}

func (h *Handlers) setWarmup(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var body struct {
		Capability string `json:"capability"`
		Enabled    bool   `json:"enabled"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if err := h.Messages.SetWarmup(r.Context(), scope.OrgID, scope.CompanyID, domain.Capability(body.Capability), chi.URLParam(r, "externalAccountID"), body.Enabled); err != nil {
		WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) createPiece(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	var body struct {
		PieceType string                            `json:"piece_type"`
		Fields    map[string]any                    `json:"fields"`
		Idem      provideradapter.IdempotencyMaterial `json:"idempotency"`
	}
	if !httputil.Decode(w, r, &body) {
		return
	}
	if q := r.URL.Query().Get("idempotency_key"); q != "" && body.Idem.QueryKey == "" {
		body.Idem.QueryKey = q
	}
	if hk := r.Header.Get("Idempotency-Key"); hk != "" && body.Idem.HeaderKey == "" {
		body.Idem.HeaderKey = hk
	}
	piece, err := h.Pieces.Create(r.Context(), scope.OrgID, scope.CompanyID, body.PieceType, body.Fields, body.Idem)
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.Created(w, piece)
}

func (h *Handlers) listPieces(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	pieces, err := h.Pieces.List(r.Context(), scope.OrgID, scope.CompanyID, limit, offset)
	if err != nil {
		WriteError(w, err)
		return
	}
	httputil.OK(w, pieces)
}

func (h *Handlers) cancelPiece(w http.ResponseWriter, r *http.Request) {
	scope, err := identity.ResolveRequest(r, false)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.Pieces.Cancel(r.Context(), scope.OrgID, scope.CompanyID, chi.URLParam(r, "pieceID")); err != nil {
		WriteError(w, err)
		return
	}
	httputil.NoContent(w)
}

package provideradapter

import (
	"context"

	"github.com/ignite/outreach-gateway/internal/pkg/httpretry"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// HeyReachAdapter implements OutreachAdapter against the HeyReach
// LinkedIn-outreach API. HeyReach's "campaign" is a sender-account-scoped
// sequence; message sync mode (HEYREACH_MESSAGE_SYNC_MODE, §6) controls
// whether ListMessages is ever called directly versus relying on webhook
// delivery, and is decided by the caller, not this adapter.
type HeyReachAdapter struct {
	base *baseClient
}

func NewHeyReachAdapter(creds Credentials, doer httpretry.HTTPDoer) *HeyReachAdapter {
	return &HeyReachAdapter{base: newBaseClient("heyreach", creds, doer)}
}

var heyReachCampaignPaths = candidatePaths{"/public/campaign/GetAll", "/campaigns"}

func (a *HeyReachAdapter) ListCampaigns(ctx context.Context, limit, offset int) ([]CampaignRecord, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	err := a.base.doJSON(ctx, "list_campaigns", "POST", heyReachCampaignPaths, nil,
		map[string]any{"limit": limit, "offset": offset}, nil, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]CampaignRecord, 0, len(resp.Items))
	for _, row := range resp.Items {
		out = append(out, CampaignRecord{
			ExternalID: toString(firstOf(row, "id", "campaignId")),
			Name:       jsonutil.GetString(row, "name", "name"),
			Status:     jsonutil.GetString(row, "status", "status"),
			Raw:        row,
		})
	}
	return out, nil
}

func (a *HeyReachAdapter) CreateCampaign(ctx context.Context, name string) (CampaignRecord, error) {
	var raw map[string]any
	paths := candidatePaths{"/public/campaign/Create"}
	err := a.base.doJSON(ctx, "create_campaign", "POST", paths, nil, map[string]any{"name": name}, nil, &raw)
	if err != nil {
		return CampaignRecord{}, err
	}
	return CampaignRecord{ExternalID: toString(firstOf(raw, "id", "campaignId")), Name: name, Raw: raw}, nil
}

func (a *HeyReachAdapter) UpdateCampaignStatus(ctx context.Context, externalCampaignID, status string) error {
	var op string
	switch status {
	case "PAUSED":
		op = "/public/campaign/Pause"
	case "ACTIVE":
		op = "/public/campaign/Resume"
	default:
		op = "/public/campaign/UpdateStatus"
	}
	paths := candidatePaths{op}
	return a.base.doJSON(ctx, "update_campaign_status", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID, "status": status}, nil, nil)
}

func (a *HeyReachAdapter) GetCampaignSequence(ctx context.Context, externalCampaignID string) (map[string]any, error) {
	var raw map[string]any
	paths := candidatePaths{"/public/campaign/GetSequence"}
	err := a.base.doJSON(ctx, "get_campaign_sequence", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID}, nil, &raw)
	return raw, err
}

func (a *HeyReachAdapter) SaveCampaignSequence(ctx context.Context, externalCampaignID string, sequence map[string]any) error {
	paths := candidatePaths{"/public/campaign/SaveSequence"}
	body := map[string]any{"campaignId": externalCampaignID}
	for k, v := range sequence {
		body[k] = v
	}
	return a.base.doJSON(ctx, "save_campaign_sequence", "POST", paths, nil, body, nil, nil)
}

func (a *HeyReachAdapter) ListLeads(ctx context.Context, externalCampaignID string, limit, offset int) ([]LeadRecord, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	paths := candidatePaths{"/public/campaign/GetLeads"}
	err := a.base.doJSON(ctx, "list_leads", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID, "limit": limit, "offset": offset}, nil, &resp)
	if err != nil {
		return nil, err
	}
	return leadRecordsFromRaw(resp.Items), nil
}

func (a *HeyReachAdapter) AddLeads(ctx context.Context, externalCampaignID string, leads []LeadRecord) error {
	paths := candidatePaths{"/public/campaign/AddLeads"}
	return a.base.doJSON(ctx, "add_leads", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID, "leads": leads}, nil, nil)
}

func (a *HeyReachAdapter) RemoveLead(ctx context.Context, externalCampaignID, externalLeadID string) error {
	paths := candidatePaths{"/public/campaign/RemoveLead"}
	return a.base.doJSON(ctx, "remove_lead", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID, "leadId": externalLeadID}, nil, nil)
}

func (a *HeyReachAdapter) MutateLead(ctx context.Context, externalCampaignID, externalLeadID string, fields map[string]any) error {
	paths := candidatePaths{"/public/campaign/UpdateLead"}
	body := map[string]any{"campaignId": externalCampaignID, "leadId": externalLeadID}
	for k, v := range fields {
		body[k] = v
	}
	return a.base.doJSON(ctx, "mutate_lead", "POST", paths, nil, body, nil, nil)
}

func (a *HeyReachAdapter) ListMessages(ctx context.Context, externalCampaignID string, limit, offset int) ([]MessageRecord, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	paths := candidatePaths{"/public/inbox/GetConversations"}
	err := a.base.doJSON(ctx, "list_messages", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID, "limit": limit, "offset": offset}, nil, &resp)
	if err != nil {
		return nil, err
	}
	return messageRecordsFromRaw(resp.Items), nil
}

func (a *HeyReachAdapter) GetCampaignAnalytics(ctx context.Context, externalCampaignID string) (AnalyticsRecord, error) {
	var raw map[string]any
	paths := candidatePaths{"/public/campaign/GetStats"}
	if err := a.base.doJSON(ctx, "get_campaign_analytics", "POST", paths, nil,
		map[string]any{"campaignId": externalCampaignID}, nil, &raw); err != nil {
		return AnalyticsRecord{}, err
	}
	return analyticsFromRaw(raw), nil
}

func (a *HeyReachAdapter) ListInboxes(ctx context.Context) ([]InboxRecord, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	paths := candidatePaths{"/public/li_account/GetAll"}
	if err := a.base.doJSON(ctx, "list_inboxes", "GET", paths, nil, nil, nil, &resp); err != nil {
		return nil, err
	}
	return inboxRecordsFromRaw(resp.Items), nil
}

func (a *HeyReachAdapter) SetWarmup(ctx context.Context, externalAccountID string, enabled bool) error {
	paths := candidatePaths{"/public/li_account/SetWarmup"}
	return a.base.doJSON(ctx, "set_warmup", "POST", paths, nil,
		map[string]any{"accountId": externalAccountID, "enabled": enabled}, nil, nil)
}

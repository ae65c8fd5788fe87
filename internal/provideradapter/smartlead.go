package provideradapter

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/pkg/httpretry"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// SmartleadAdapter implements OutreachAdapter against the Smartlead REST
// API. Smartlead scopes campaigns to an optional client sub-account
// (ClientID), surfaced by reconciliation as the `smartlead_client_id`
// tenant-specific identifier named in §4.9.
type SmartleadAdapter struct {
	base *baseClient
}

// NewSmartleadAdapter constructs a stateless Smartlead adapter from tenant
// credentials. doer is optional; pass nil to use the default retry client.
func NewSmartleadAdapter(creds Credentials, doer httpretry.HTTPDoer) *SmartleadAdapter {
	return &SmartleadAdapter{base: newBaseClient("smartlead", creds, doer)}
}

// smartleadCampaignPaths reflects deployments that migrated from an
// unversioned path to a versioned one without a compatibility shim.
var smartleadCampaignPaths = candidatePaths{"/api/v1/campaigns", "/campaigns"}

func (a *SmartleadAdapter) ListCampaigns(ctx context.Context, limit, offset int) ([]CampaignRecord, error) {
	var raw []map[string]any
	err := a.base.doJSON(ctx, "list_campaigns", "GET", smartleadCampaignPaths,
		map[string]string{"limit": fmt.Sprintf("%d", limit), "offset": fmt.Sprintf("%d", offset)},
		nil, nil, &raw)
	if err != nil {
		return nil, err
	}
	out := make([]CampaignRecord, 0, len(raw))
	for _, row := range raw {
		out = append(out, CampaignRecord{
			ExternalID: toString(firstOf(row, "id", "campaignId", "campaign_id")),
			Name:       jsonutil.GetString(row, "name", "campaign_name"),
			Status:     jsonutil.GetString(row, "status", ""),
			ClientID:   jsonutil.GetString(row, "client_id", "clientId"),
			Raw:        row,
		})
	}
	return out, nil
}

func (a *SmartleadAdapter) CreateCampaign(ctx context.Context, name string) (CampaignRecord, error) {
	var raw map[string]any
	err := a.base.doJSON(ctx, "create_campaign", "POST", smartleadCampaignPaths, nil,
		map[string]any{"name": name}, nil, &raw)
	if err != nil {
		return CampaignRecord{}, err
	}
	return CampaignRecord{
		ExternalID: toString(firstOf(raw, "id", "campaignId")),
		Name:       jsonutil.GetString(raw, "name", "campaign_name"),
		Status:     jsonutil.GetString(raw, "status", ""),
		Raw:        raw,
	}, nil
}

func (a *SmartleadAdapter) UpdateCampaignStatus(ctx context.Context, externalCampaignID, status string) error {
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/status"}
	return a.base.doJSON(ctx, "update_campaign_status", "POST", paths, nil,
		map[string]any{"status": status}, nil, nil)
}

func (a *SmartleadAdapter) GetCampaignSequence(ctx context.Context, externalCampaignID string) (map[string]any, error) {
	var raw map[string]any
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/sequences"}
	err := a.base.doJSON(ctx, "get_campaign_sequence", "GET", paths, nil, nil, nil, &raw)
	return raw, err
}

func (a *SmartleadAdapter) SaveCampaignSequence(ctx context.Context, externalCampaignID string, sequence map[string]any) error {
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/sequences"}
	return a.base.doJSON(ctx, "save_campaign_sequence", "POST", paths, nil, sequence, nil, nil)
}

func (a *SmartleadAdapter) ListLeads(ctx context.Context, externalCampaignID string, limit, offset int) ([]LeadRecord, error) {
	var raw []map[string]any
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/leads"}
	err := a.base.doJSON(ctx, "list_leads", "GET", paths,
		map[string]string{"limit": fmt.Sprintf("%d", limit), "offset": fmt.Sprintf("%d", offset)},
		nil, nil, &raw)
	if err != nil {
		return nil, err
	}
	return leadRecordsFromRaw(raw), nil
}

func (a *SmartleadAdapter) AddLeads(ctx context.Context, externalCampaignID string, leads []LeadRecord) error {
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/leads"}
	return a.base.doJSON(ctx, "add_leads", "POST", paths, nil, map[string]any{"leads": leads}, nil, nil)
}

func (a *SmartleadAdapter) RemoveLead(ctx context.Context, externalCampaignID, externalLeadID string) error {
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/leads/" + externalLeadID}
	return a.base.doJSON(ctx, "remove_lead", "DELETE", paths, nil, nil, nil, nil)
}

func (a *SmartleadAdapter) MutateLead(ctx context.Context, externalCampaignID, externalLeadID string, fields map[string]any) error {
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/leads/" + externalLeadID}
	return a.base.doJSON(ctx, "mutate_lead", "PATCH", paths, nil, fields, nil, nil)
}

func (a *SmartleadAdapter) ListMessages(ctx context.Context, externalCampaignID string, limit, offset int) ([]MessageRecord, error) {
	var raw []map[string]any
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/messages"}
	err := a.base.doJSON(ctx, "list_messages", "GET", paths,
		map[string]string{"limit": fmt.Sprintf("%d", limit), "offset": fmt.Sprintf("%d", offset)},
		nil, nil, &raw)
	if err != nil {
		return nil, err
	}
	return messageRecordsFromRaw(raw), nil
}

func (a *SmartleadAdapter) GetCampaignAnalytics(ctx context.Context, externalCampaignID string) (AnalyticsRecord, error) {
	var raw map[string]any
	paths := candidatePaths{"/api/v1/campaigns/" + externalCampaignID + "/analytics"}
	if err := a.base.doJSON(ctx, "get_campaign_analytics", "GET", paths, nil, nil, nil, &raw); err != nil {
		return AnalyticsRecord{}, err
	}
	return analyticsFromRaw(raw), nil
}

func (a *SmartleadAdapter) ListInboxes(ctx context.Context) ([]InboxRecord, error) {
	var raw []map[string]any
	paths := candidatePaths{"/api/v1/email-accounts"}
	if err := a.base.doJSON(ctx, "list_inboxes", "GET", paths, nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return inboxRecordsFromRaw(raw), nil
}

func (a *SmartleadAdapter) SetWarmup(ctx context.Context, externalAccountID string, enabled bool) error {
	paths := candidatePaths{"/api/v1/email-accounts/" + externalAccountID + "/warmup"}
	return a.base.doJSON(ctx, "set_warmup", "POST", paths, nil, map[string]any{"enabled": enabled}, nil, nil)
}

// firstOf returns the first present value among keys, or nil.
func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

package provideradapter

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/pkg/httpretry"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// EmailBisonAdapter implements OutreachAdapter against the EmailBison REST
// API. EmailBison authenticates with OAuth2 client-credentials rather than
// a static API key; Credentials.APIKey carries the bearer token already
// minted by the oauth2/clientcredentials flow wired in the credential
// resolver, so the adapter itself stays a thin REST client like its peers.
type EmailBisonAdapter struct {
	base *baseClient
}

func NewEmailBisonAdapter(creds Credentials, doer httpretry.HTTPDoer) *EmailBisonAdapter {
	return &EmailBisonAdapter{base: newBaseClient("emailbison", creds, doer)}
}

var emailBisonCampaignPaths = candidatePaths{"/api/campaigns", "/v1/campaigns"}

func (a *EmailBisonAdapter) ListCampaigns(ctx context.Context, limit, offset int) ([]CampaignRecord, error) {
	var raw []map[string]any
	err := a.base.doJSON(ctx, "list_campaigns", "GET", emailBisonCampaignPaths,
		map[string]string{"per_page": fmt.Sprintf("%d", limit), "page": fmt.Sprintf("%d", offset/max1(limit))},
		nil, nil, &raw)
	if err != nil {
		return nil, err
	}
	out := make([]CampaignRecord, 0, len(raw))
	for _, row := range raw {
		out = append(out, CampaignRecord{
			ExternalID: toString(firstOf(row, "id", "uuid")),
			Name:       jsonutil.GetString(row, "name", "name"),
			Status:     jsonutil.GetString(row, "status", "status"),
			Raw:        row,
		})
	}
	return out, nil
}

func (a *EmailBisonAdapter) CreateCampaign(ctx context.Context, name string) (CampaignRecord, error) {
	var raw map[string]any
	err := a.base.doJSON(ctx, "create_campaign", "POST", emailBisonCampaignPaths, nil,
		map[string]any{"name": name}, nil, &raw)
	if err != nil {
		return CampaignRecord{}, err
	}
	return CampaignRecord{ExternalID: toString(firstOf(raw, "id", "uuid")), Name: name, Raw: raw}, nil
}

func (a *EmailBisonAdapter) UpdateCampaignStatus(ctx context.Context, externalCampaignID, status string) error {
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID}
	return a.base.doJSON(ctx, "update_campaign_status", "PATCH", paths, nil, map[string]any{"status": status}, nil, nil)
}

func (a *EmailBisonAdapter) GetCampaignSequence(ctx context.Context, externalCampaignID string) (map[string]any, error) {
	var raw map[string]any
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/steps"}
	err := a.base.doJSON(ctx, "get_campaign_sequence", "GET", paths, nil, nil, nil, &raw)
	return raw, err
}

func (a *EmailBisonAdapter) SaveCampaignSequence(ctx context.Context, externalCampaignID string, sequence map[string]any) error {
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/steps"}
	return a.base.doJSON(ctx, "save_campaign_sequence", "PUT", paths, nil, sequence, nil, nil)
}

func (a *EmailBisonAdapter) ListLeads(ctx context.Context, externalCampaignID string, limit, offset int) ([]LeadRecord, error) {
	var raw []map[string]any
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/leads"}
	err := a.base.doJSON(ctx, "list_leads", "GET", paths,
		map[string]string{"per_page": fmt.Sprintf("%d", limit), "page": fmt.Sprintf("%d", offset/max1(limit))},
		nil, nil, &raw)
	if err != nil {
		return nil, err
	}
	return leadRecordsFromRaw(raw), nil
}

func (a *EmailBisonAdapter) AddLeads(ctx context.Context, externalCampaignID string, leads []LeadRecord) error {
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/leads"}
	return a.base.doJSON(ctx, "add_leads", "POST", paths, nil, map[string]any{"leads": leads}, nil, nil)
}

func (a *EmailBisonAdapter) RemoveLead(ctx context.Context, externalCampaignID, externalLeadID string) error {
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/leads/" + externalLeadID}
	return a.base.doJSON(ctx, "remove_lead", "DELETE", paths, nil, nil, nil, nil)
}

func (a *EmailBisonAdapter) MutateLead(ctx context.Context, externalCampaignID, externalLeadID string, fields map[string]any) error {
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/leads/" + externalLeadID}
	return a.base.doJSON(ctx, "mutate_lead", "PATCH", paths, nil, fields, nil, nil)
}

func (a *EmailBisonAdapter) ListMessages(ctx context.Context, externalCampaignID string, limit, offset int) ([]MessageRecord, error) {
	var raw []map[string]any
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/messages"}
	err := a.base.doJSON(ctx, "list_messages", "GET", paths,
		map[string]string{"per_page": fmt.Sprintf("%d", limit), "page": fmt.Sprintf("%d", offset/max1(limit))},
		nil, nil, &raw)
	if err != nil {
		return nil, err
	}
	return messageRecordsFromRaw(raw), nil
}

func (a *EmailBisonAdapter) GetCampaignAnalytics(ctx context.Context, externalCampaignID string) (AnalyticsRecord, error) {
	var raw map[string]any
	paths := candidatePaths{"/api/campaigns/" + externalCampaignID + "/analytics"}
	if err := a.base.doJSON(ctx, "get_campaign_analytics", "GET", paths, nil, nil, nil, &raw); err != nil {
		return AnalyticsRecord{}, err
	}
	return analyticsFromRaw(raw), nil
}

func (a *EmailBisonAdapter) ListInboxes(ctx context.Context) ([]InboxRecord, error) {
	var raw []map[string]any
	paths := candidatePaths{"/api/senders"}
	if err := a.base.doJSON(ctx, "list_inboxes", "GET", paths, nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return inboxRecordsFromRaw(raw), nil
}

func (a *EmailBisonAdapter) SetWarmup(ctx context.Context, externalAccountID string, enabled bool) error {
	paths := candidatePaths{"/api/senders/" + externalAccountID}
	return a.base.doJSON(ctx, "set_warmup", "PATCH", paths, nil, map[string]any{"warmup_enabled": enabled}, nil, nil)
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

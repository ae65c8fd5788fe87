package service

import (
	"context"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// MessageService implements the read-mostly message/inbox/analytics
// Domain Write Services surface (§4.11). Message creation itself flows
// through the projection engine from webhooks (§4.7); this service covers
// the operator-triggered provider calls — listing messages on demand,
// toggling inbox warmup, and pulling analytics.
type MessageService struct {
	providers *ProviderResolver
	campaigns repository.CampaignRepository
	metrics   *observability.Registry
}

func NewMessageService(providers *ProviderResolver, campaigns repository.CampaignRepository, metrics *observability.Registry) *MessageService {
	return &MessageService{providers: providers, campaigns: campaigns, metrics: metrics}
}

func (s *MessageService) resolveCampaign(ctx context.Context, orgID, companyID, campaignID string) (*domain.Campaign, provideradapter.OutreachAdapter, error) {
	campaign, err := s.campaigns.Get(ctx, orgID, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign.CompanyID != companyID {
		return nil, nil, repository.ErrScopeMismatch
	}
	adapter, _, err := s.providers.ResolveOutreach(ctx, orgID, companyID, domain.ProviderCapability(campaign.ProviderSlug))
	if err != nil {
		return nil, nil, err
	}
	return campaign, adapter, nil
}

func (s *MessageService) ListMessages(ctx context.Context, orgID, companyID, campaignID string, limit, offset int) ([]provideradapter.MessageRecord, error) {
	campaign, adapter, err := s.resolveCampaign(ctx, orgID, companyID, campaignID)
	if err != nil {
		return nil, err
	}
	return adapter.ListMessages(ctx, campaign.ExternalCampaignID, limit, offset)
}

func (s *MessageService) Analytics(ctx context.Context, orgID, companyID, campaignID string) (provideradapter.AnalyticsRecord, error) {
	campaign, adapter, err := s.resolveCampaign(ctx, orgID, companyID, campaignID)
	if err != nil {
		return provideradapter.AnalyticsRecord{}, err
	}
	return adapter.GetCampaignAnalytics(ctx, campaign.ExternalCampaignID)
}

// SetWarmup toggles warmup on a sending inbox for the company's entitled
// outreach provider (no campaign scope — inboxes are account-level).
func (s *MessageService) SetWarmup(ctx context.Context, orgID, companyID string, capability domain.Capability, externalAccountID string, enabled bool) error {
	adapter, ent, err := s.providers.ResolveOutreach(ctx, orgID, companyID, capability)
	if err != nil {
		return err
	}
	if err := adapter.SetWarmup(ctx, externalAccountID, enabled); err != nil {
		s.metrics.Incr("inbox.warmup_set.provider_error", map[string]string{"provider": ent.ProviderSlug}, 1)
		return err
	}
	s.metrics.Incr("inbox.warmup_set", map[string]string{"provider": ent.ProviderSlug}, 1)
	return nil
}

func (s *MessageService) ListInboxes(ctx context.Context, orgID, companyID string, capability domain.Capability) ([]provideradapter.InboxRecord, error) {
	adapter, _, err := s.providers.ResolveOutreach(ctx, orgID, companyID, capability)
	if err != nil {
		return nil, err
	}
	return adapter.ListInboxes(ctx)
}

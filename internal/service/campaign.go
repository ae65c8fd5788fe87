package service

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/normalize"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// CampaignService implements the campaign-mutating Domain Write Services
// (§4.11): create, status change, sequence edit.
type CampaignService struct {
	providers *ProviderResolver
	campaigns repository.CampaignRepository
	metrics   *observability.Registry
}

func NewCampaignService(providers *ProviderResolver, campaigns repository.CampaignRepository, metrics *observability.Registry) *CampaignService {
	return &CampaignService{providers: providers, campaigns: campaigns, metrics: metrics}
}

// Create provisions a campaign with the company's entitled outreach
// provider and upserts the local row (§4.11 steps 2-5).
func (s *CampaignService) Create(ctx context.Context, orgID, companyID, name string, capability domain.Capability) (*domain.Campaign, error) {
	adapter, ent, err := s.providers.ResolveOutreach(ctx, orgID, companyID, capability)
	if err != nil {
		return nil, err
	}

	record, err := adapter.CreateCampaign(ctx, name)
	if err != nil {
		s.metrics.Incr("campaign.create.provider_error", map[string]string{"provider": ent.ProviderSlug}, 1)
		return nil, err
	}

	campaign := &domain.Campaign{
		OrgID:              orgID,
		CompanyID:          companyID,
		ProviderSlug:       ent.ProviderSlug,
		ExternalCampaignID: record.ExternalID,
		Name:               orDefault(record.Name, name),
		Status:             normalize.CampaignStatus(record.Status),
		RawPayload:         record.Raw,
	}
	id, err := s.campaigns.Create(ctx, campaign)
	if err != nil {
		return nil, fmt.Errorf("persist campaign: %w", err)
	}
	campaign.ID = id
	s.metrics.Incr("campaign.created", map[string]string{"provider": ent.ProviderSlug}, 1)
	return campaign, nil
}

// SetStatus pauses/resumes/stops a campaign through its provider and
// reflects the result locally.
func (s *CampaignService) SetStatus(ctx context.Context, orgID, companyID, campaignID string, status domain.CampaignStatus) (*domain.Campaign, error) {
	campaign, err := s.campaigns.Get(ctx, orgID, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CompanyID != companyID {
		return nil, repository.ErrScopeMismatch
	}

	adapter, ent, err := s.providers.ResolveOutreach(ctx, orgID, companyID, domain.ProviderCapability(campaign.ProviderSlug))
	if err != nil {
		return nil, err
	}

	if err := adapter.UpdateCampaignStatus(ctx, campaign.ExternalCampaignID, string(status)); err != nil {
		s.metrics.Incr("campaign.status_update.provider_error", map[string]string{"provider": ent.ProviderSlug}, 1)
		return nil, err
	}
	if err := s.campaigns.UpdateStatusAndPayload(ctx, orgID, campaignID, status, campaign.RawPayload); err != nil {
		return nil, fmt.Errorf("persist campaign status: %w", err)
	}
	campaign.Status = status
	s.metrics.Incr("campaign.status_updated", map[string]string{"provider": ent.ProviderSlug, "status": string(status)}, 1)
	return campaign, nil
}

// GetSequence fetches the provider-side message sequence for a campaign.
func (s *CampaignService) GetSequence(ctx context.Context, orgID, companyID, campaignID string) (map[string]any, error) {
	campaign, err := s.campaigns.Get(ctx, orgID, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.CompanyID != companyID {
		return nil, repository.ErrScopeMismatch
	}
	adapter, _, err := s.providers.ResolveOutreach(ctx, orgID, companyID, domain.ProviderCapability(campaign.ProviderSlug))
	if err != nil {
		return nil, err
	}
	return adapter.GetCampaignSequence(ctx, campaign.ExternalCampaignID)
}

// SaveSequence replaces the provider-side message sequence for a campaign.
func (s *CampaignService) SaveSequence(ctx context.Context, orgID, companyID, campaignID string, sequence map[string]any) error {
	campaign, err := s.campaigns.Get(ctx, orgID, campaignID)
	if err != nil {
		return err
	}
	if campaign.CompanyID != companyID {
		return repository.ErrScopeMismatch
	}
	adapter, ent, err := s.providers.ResolveOutreach(ctx, orgID, companyID, domain.ProviderCapability(campaign.ProviderSlug))
	if err != nil {
		return err
	}
	if err := adapter.SaveCampaignSequence(ctx, campaign.ExternalCampaignID, sequence); err != nil {
		s.metrics.Incr("campaign.sequence_save.provider_error", map[string]string{"provider": ent.ProviderSlug}, 1)
		return err
	}
	s.metrics.Incr("campaign.sequence_saved", map[string]string{"provider": ent.ProviderSlug}, 1)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

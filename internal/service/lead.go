package service

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/normalize"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// LeadService implements the lead-mutating Domain Write Services: add,
// remove, mutate a lead within a campaign.
type LeadService struct {
	providers *ProviderResolver
	campaigns repository.CampaignRepository
	leads     repository.LeadRepository
	metrics   *observability.Registry
}

func NewLeadService(providers *ProviderResolver, campaigns repository.CampaignRepository, leads repository.LeadRepository, metrics *observability.Registry) *LeadService {
	return &LeadService{providers: providers, campaigns: campaigns, leads: leads, metrics: metrics}
}

func (s *LeadService) resolveCampaign(ctx context.Context, orgID, companyID, campaignID string) (*domain.Campaign, provideradapter.OutreachAdapter, error) {
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

// Add enqueues new leads against the provider and upserts their local rows.
func (s *LeadService) Add(ctx context.Context, orgID, companyID, campaignID string, leads []provideradapter.LeadRecord) error {
	campaign, adapter, err := s.resolveCampaign(ctx, orgID, companyID, campaignID)
	if err != nil {
		return err
	}
	if err := adapter.AddLeads(ctx, campaign.ExternalCampaignID, leads); err != nil {
		s.metrics.Incr("lead.add.provider_error", map[string]string{"provider": campaign.ProviderSlug}, 1)
		return err
	}
	for _, l := range leads {
		row := &domain.CampaignLead{
			OrgID: orgID, CompanyID: companyID, CompanyCampaignID: campaign.ID,
			ProviderSlug: campaign.ProviderSlug, ExternalLeadID: l.ExternalID,
			Email: l.Email, FirstName: l.FirstName, LastName: l.LastName,
			CompanyName: l.CompanyName, Title: l.Title,
			Status: normalize.LeadStatus(l.Status), RawPayload: l.Raw,
		}
		existing, getErr := s.leads.GetByExternalID(ctx, orgID, campaign.ID, campaign.ProviderSlug, l.ExternalID)
		if getErr == repository.ErrNotFound {
			if _, createErr := s.leads.Create(ctx, row); createErr != nil {
				return fmt.Errorf("persist lead %s: %w", l.ExternalID, createErr)
			}
		} else if getErr == nil {
			row.ID = existing.ID
			if updErr := s.leads.Update(ctx, orgID, existing.ID, row); updErr != nil {
				return fmt.Errorf("update lead %s: %w", l.ExternalID, updErr)
			}
		} else {
			return fmt.Errorf("lookup lead %s: %w", l.ExternalID, getErr)
		}
	}
	s.metrics.Incr("lead.added", map[string]string{"provider": campaign.ProviderSlug}, len(leads))
	return nil
}

// Remove removes a lead from the provider campaign and marks it locally.
func (s *LeadService) Remove(ctx context.Context, orgID, companyID, campaignID, externalLeadID string) error {
	campaign, adapter, err := s.resolveCampaign(ctx, orgID, companyID, campaignID)
	if err != nil {
		return err
	}
	if err := adapter.RemoveLead(ctx, campaign.ExternalCampaignID, externalLeadID); err != nil {
		s.metrics.Incr("lead.remove.provider_error", map[string]string{"provider": campaign.ProviderSlug}, 1)
		return err
	}
	existing, err := s.leads.GetByExternalID(ctx, orgID, campaign.ID, campaign.ProviderSlug, externalLeadID)
	if err != nil {
		return err
	}
	existing.Status = domain.LeadUnsubscribed
	if err := s.leads.Update(ctx, orgID, existing.ID, existing); err != nil {
		return fmt.Errorf("mark lead removed: %w", err)
	}
	s.metrics.Incr("lead.removed", map[string]string{"provider": campaign.ProviderSlug}, 1)
	return nil
}

// Mutate applies a field-level update to a lead (e.g. status change) through
// the provider, then reflects the new field set locally.
func (s *LeadService) Mutate(ctx context.Context, orgID, companyID, campaignID, externalLeadID string, fields map[string]any) error {
	campaign, adapter, err := s.resolveCampaign(ctx, orgID, companyID, campaignID)
	if err != nil {
		return err
	}
	if err := adapter.MutateLead(ctx, campaign.ExternalCampaignID, externalLeadID, fields); err != nil {
		s.metrics.Incr("lead.mutate.provider_error", map[string]string{"provider": campaign.ProviderSlug}, 1)
		return err
	}
	existing, err := s.leads.GetByExternalID(ctx, orgID, campaign.ID, campaign.ProviderSlug, externalLeadID)
	if err != nil {
		return err
	}
	if status, ok := fields["status"].(string); ok {
		existing.Status = normalize.LeadStatus(status)
	}
	if err := s.leads.Update(ctx, orgID, existing.ID, existing); err != nil {
		return fmt.Errorf("update mutated lead: %w", err)
	}
	s.metrics.Incr("lead.mutated", map[string]string{"provider": campaign.ProviderSlug}, 1)
	return nil
}

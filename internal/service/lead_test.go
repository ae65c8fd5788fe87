package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/repository"
	"github.com/ignite/outreach-gateway/internal/repository/memory"
)

func newTestLeadService() (*LeadService, *memory.CampaignRepo, *memory.LeadRepo) {
	campaigns := memory.NewCampaignRepo()
	leads := memory.NewLeadRepo()
	resolver := &ProviderResolver{Organizations: memory.NewOrganizationRepo(), Entitlements: memory.NewEntitlementRepo()}
	metrics := observability.NewRegistry(nil, nil, observability.SLOThresholds{})
	return NewLeadService(resolver, campaigns, leads, metrics), campaigns, leads
}

func TestLeadServiceAddCampaignNotFound(t *testing.T) {
	svc, _, _ := newTestLeadService()
	err := svc.Add(context.Background(), testOrg, testCompany, "missing", []provideradapter.LeadRecord{{ExternalID: "l1"}})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLeadServiceAddScopeMismatch(t *testing.T) {
	svc, campaigns, _ := newTestLeadService()
	id, _ := campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: "other-company", ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	err := svc.Add(context.Background(), testOrg, testCompany, id, []provideradapter.LeadRecord{{ExternalID: "l1"}})
	if !errors.Is(err, repository.ErrScopeMismatch) {
		t.Fatalf("err = %v, want ErrScopeMismatch", err)
	}
}

func TestLeadServiceAddNoEntitlement(t *testing.T) {
	svc, campaigns, _ := newTestLeadService()
	id, _ := campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: testCompany, ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	err := svc.Add(context.Background(), testOrg, testCompany, id, []provideradapter.LeadRecord{{ExternalID: "l1"}})
	if !errors.Is(err, ErrNoEntitlement) {
		t.Fatalf("err = %v, want ErrNoEntitlement", err)
	}
}

func TestLeadServiceRemoveLeadNotPersistedLocallyYet(t *testing.T) {
	svc, campaigns, _ := newTestLeadService()
	id, _ := campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: testCompany, ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	err := svc.Remove(context.Background(), testOrg, testCompany, id, "lead-1")
	if !errors.Is(err, ErrNoEntitlement) {
		t.Fatalf("err = %v, want ErrNoEntitlement (fails before reaching the local lead lookup)", err)
	}
}

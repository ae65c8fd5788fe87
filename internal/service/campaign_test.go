package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/repository"
	"github.com/ignite/outreach-gateway/internal/repository/memory"
)

func newTestCampaignService() (*CampaignService, *memory.CampaignRepo, *memory.OrganizationRepo, *memory.EntitlementRepo) {
	campaigns := memory.NewCampaignRepo()
	orgs := memory.NewOrganizationRepo()
	entitlements := memory.NewEntitlementRepo()
	resolver := &ProviderResolver{Organizations: orgs, Entitlements: entitlements}
	metrics := observability.NewRegistry(nil, nil, observability.SLOThresholds{})
	return NewCampaignService(resolver, campaigns, metrics), campaigns, orgs, entitlements
}

func TestCampaignServiceCreateNoEntitlement(t *testing.T) {
	svc, _, _, _ := newTestCampaignService()
	_, err := svc.Create(context.Background(), testOrg, testCompany, "Q1", domain.CapabilityEmailOutreach)
	if !errors.Is(err, ErrNoEntitlement) {
		t.Fatalf("err = %v, want ErrNoEntitlement", err)
	}
}

func TestCampaignServiceSetStatusCampaignNotFound(t *testing.T) {
	svc, _, _, _ := newTestCampaignService()
	_, err := svc.SetStatus(context.Background(), testOrg, testCompany, "missing", domain.CampaignPaused)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCampaignServiceSetStatusScopeMismatch(t *testing.T) {
	svc, campaigns, _, _ := newTestCampaignService()
	id, err := campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: "other-company", ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.SetStatus(context.Background(), testOrg, testCompany, id, domain.CampaignPaused)
	if !errors.Is(err, repository.ErrScopeMismatch) {
		t.Fatalf("err = %v, want ErrScopeMismatch", err)
	}
}

func TestCampaignServiceGetSequenceNoEntitlement(t *testing.T) {
	svc, campaigns, _, _ := newTestCampaignService()
	id, _ := campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: testCompany, ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	_, err := svc.GetSequence(context.Background(), testOrg, testCompany, id)
	if !errors.Is(err, ErrNoEntitlement) {
		t.Fatalf("err = %v, want ErrNoEntitlement", err)
	}
}

const testOrg = "org-1"
const testCompany = "company-1"

package memory

import (
	"context"
	"testing"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/repository"
)

func TestCampaignRepoGetReturnsACopyNotTheLiveRow(t *testing.T) {
	repo := NewCampaignRepo()
	id, err := repo.Create(context.Background(), &domain.Campaign{OrgID: "org-1", Status: domain.CampaignActive})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(context.Background(), "org-1", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Status = domain.CampaignPaused

	again, err := repo.Get(context.Background(), "org-1", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Status != domain.CampaignActive {
		t.Errorf("mutating the returned copy changed stored state: status = %v", again.Status)
	}
}

func TestCampaignRepoGetWrongOrgNotFound(t *testing.T) {
	repo := NewCampaignRepo()
	id, _ := repo.Create(context.Background(), &domain.Campaign{OrgID: "org-1"})

	if _, err := repo.Get(context.Background(), "org-2", id); err != repository.ErrNotFound {
		t.Errorf("Get across orgs = %v, want ErrNotFound", err)
	}
}

func TestCampaignRepoListFiltersByCompanyProviderAndStatus(t *testing.T) {
	repo := NewCampaignRepo()
	repo.Create(context.Background(), &domain.Campaign{OrgID: "org-1", CompanyID: "co-1", ProviderSlug: "smartlead", Status: domain.CampaignActive})
	repo.Create(context.Background(), &domain.Campaign{OrgID: "org-1", CompanyID: "co-1", ProviderSlug: "lob", Status: domain.CampaignActive})
	repo.Create(context.Background(), &domain.Campaign{OrgID: "org-1", CompanyID: "co-2", ProviderSlug: "smartlead", Status: domain.CampaignPaused})
	repo.Create(context.Background(), &domain.Campaign{OrgID: "org-2", CompanyID: "co-1", ProviderSlug: "smartlead", Status: domain.CampaignActive})

	out, total, err := repo.List(context.Background(), "org-1", repository.CampaignListFilter{CompanyID: "co-1", ProviderSlug: "smartlead"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(out) != 1 {
		t.Fatalf("List = %d/%d rows, want 1/1", len(out), total)
	}
	if out[0].ProviderSlug != "smartlead" || out[0].CompanyID != "co-1" {
		t.Errorf("unexpected row returned: %+v", out[0])
	}
}

func TestCampaignRepoListAppliesLimitAndOffset(t *testing.T) {
	repo := NewCampaignRepo()
	for i := 0; i < 5; i++ {
		repo.Create(context.Background(), &domain.Campaign{OrgID: "org-1", CompanyID: "co-1"})
	}

	out, total, err := repo.List(context.Background(), "org-1", repository.CampaignListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5 (unaffected by pagination)", total)
	}
	if len(out) != 2 {
		t.Errorf("len(out) = %d, want 2", len(out))
	}
}

func TestCampaignRepoUpdateStatusAndPayloadNotFound(t *testing.T) {
	repo := NewCampaignRepo()
	if err := repo.UpdateStatusAndPayload(context.Background(), "org-1", "missing", domain.CampaignActive, nil); err != repository.ErrNotFound {
		t.Errorf("UpdateStatusAndPayload on missing row = %v, want ErrNotFound", err)
	}
}

func TestEntitlementRepoGetMatchesOrgCompanyAndCapability(t *testing.T) {
	repo := NewEntitlementRepo()
	repo.Put(domain.Entitlement{OrgID: "org-1", CompanyID: "co-1", Capability: domain.CapabilityEmailOutreach, ProviderSlug: "smartlead", Status: domain.EntitlementEntitled})
	repo.Put(domain.Entitlement{OrgID: "org-1", CompanyID: "co-1", Capability: domain.CapabilityDirectMail, ProviderSlug: "lob", Status: domain.EntitlementEntitled})

	got, err := repo.Get(context.Background(), "org-1", "co-1", domain.CapabilityDirectMail)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ProviderSlug != "lob" {
		t.Errorf("got.ProviderSlug = %q, want lob", got.ProviderSlug)
	}
}

func TestEntitlementRepoGetNoMatchNotFound(t *testing.T) {
	repo := NewEntitlementRepo()
	if _, err := repo.Get(context.Background(), "org-1", "co-1", domain.CapabilityEmailOutreach); err != repository.ErrNotFound {
		t.Errorf("Get with no rows = %v, want ErrNotFound", err)
	}
}

func TestEntitlementRepoListFiltersByEveryField(t *testing.T) {
	repo := NewEntitlementRepo()
	repo.Put(domain.Entitlement{OrgID: "org-1", CompanyID: "co-1", Capability: domain.CapabilityEmailOutreach, ProviderSlug: "smartlead", Status: domain.EntitlementEntitled})
	repo.Put(domain.Entitlement{OrgID: "org-1", CompanyID: "co-2", Capability: domain.CapabilityEmailOutreach, ProviderSlug: "heyreach", Status: domain.EntitlementDisconnected})

	out, err := repo.List(context.Background(), repository.EntitlementListFilter{OrgID: "org-1", Status: domain.EntitlementDisconnected})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].ProviderSlug != "heyreach" {
		t.Errorf("List = %+v, want exactly the disconnected heyreach row", out)
	}
}

func TestOrganizationRepoGetNotFound(t *testing.T) {
	repo := NewOrganizationRepo()
	if _, err := repo.Get(context.Background(), "missing"); err != repository.ErrNotFound {
		t.Errorf("Get on empty repo = %v, want ErrNotFound", err)
	}
}

func TestPieceRepoGetByExternalIDScopesToOrgAndProvider(t *testing.T) {
	repo := NewPieceRepo()
	repo.Create(context.Background(), &domain.DirectMailPiece{OrgID: "org-1", ProviderSlug: "lob", ExternalPieceID: "psc_1"})
	repo.Create(context.Background(), &domain.DirectMailPiece{OrgID: "org-2", ProviderSlug: "lob", ExternalPieceID: "psc_1"})

	got, err := repo.GetByExternalID(context.Background(), "org-1", "lob", "psc_1")
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if got.OrgID != "org-1" {
		t.Errorf("got.OrgID = %q, want org-1", got.OrgID)
	}
}

func TestLeadRepoUpdateNotFoundAcrossOrgs(t *testing.T) {
	repo := NewLeadRepo()
	id, _ := repo.Create(context.Background(), &domain.CampaignLead{OrgID: "org-1"})
	if err := repo.Update(context.Background(), "org-2", id, &domain.CampaignLead{}); err != repository.ErrNotFound {
		t.Errorf("Update from the wrong org = %v, want ErrNotFound", err)
	}
}

func TestLeadRepoBulkCreateGeneratesIDsAndStoresEveryRow(t *testing.T) {
	repo := NewLeadRepo()
	leads := []*domain.CampaignLead{
		{OrgID: "org-1", ExternalLeadID: "l1"},
		{OrgID: "org-1", ExternalLeadID: "l2"},
	}
	if err := repo.BulkCreate(context.Background(), leads); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if leads[0].ID == "" || leads[1].ID == "" || leads[0].ID == leads[1].ID {
		t.Fatalf("expected distinct generated IDs, got %q and %q", leads[0].ID, leads[1].ID)
	}

	out, total, err := repo.List(context.Background(), "org-1", repository.LeadListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(out) != 2 {
		t.Fatalf("List after BulkCreate = %d/%d, want 2/2", len(out), total)
	}
}

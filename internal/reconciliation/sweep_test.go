package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/repository"
	"github.com/ignite/outreach-gateway/internal/repository/memory"
)

// erroringEntitlements always fails List, for exercising runProvider's
// "list entitlements" error path without a live database.
type erroringEntitlements struct{}

func (erroringEntitlements) Get(_ context.Context, _, _ string, _ domain.Capability) (*domain.Entitlement, error) {
	return nil, errors.New("not implemented")
}
func (erroringEntitlements) List(_ context.Context, _ repository.EntitlementListFilter) ([]domain.Entitlement, error) {
	return nil, errors.New("connection refused")
}

func newTestSweeper(entitlements repository.EntitlementRepository, organizations repository.OrganizationRepository) *Sweeper {
	runner, _, _, _ := newTestRunner()
	return NewSweeper(runner, organizations, entitlements, domain.MessageSyncWebhookOnly)
}

func TestSweeperUnrecognizedProviderSlug(t *testing.T) {
	sweeper := newTestSweeper(memory.NewEntitlementRepo(), memory.NewOrganizationRepo())
	resp := sweeper.Run(context.Background(), RunRequest{ProviderSlug: "carrier-pigeon"})
	if len(resp.Providers) != 1 {
		t.Fatalf("Providers = %d, want 1", len(resp.Providers))
	}
	if len(resp.Providers[0].Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry", resp.Providers[0].Errors)
	}
}

func TestSweeperSweepsAllProvidersByDefault(t *testing.T) {
	sweeper := newTestSweeper(memory.NewEntitlementRepo(), memory.NewOrganizationRepo())
	resp := sweeper.Run(context.Background(), RunRequest{})
	if len(resp.Providers) != len(defaultSweepProviders) {
		t.Fatalf("Providers = %d, want %d", len(resp.Providers), len(defaultSweepProviders))
	}
}

func TestSweeperEntitlementListErrorRecorded(t *testing.T) {
	sweeper := newTestSweeper(erroringEntitlements{}, memory.NewOrganizationRepo())
	resp := sweeper.Run(context.Background(), RunRequest{ProviderSlug: domain.ProviderSmartlead})
	stats := resp.Providers[0]
	if len(stats.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry", stats.Errors)
	}
}

func TestSweeperMissingOrganizationRecorded(t *testing.T) {
	entitlements := memory.NewEntitlementRepo()
	entitlements.Put(domain.Entitlement{
		OrgID: "org-missing", CompanyID: testCompany,
		Capability: domain.CapabilityEmailOutreach, ProviderSlug: domain.ProviderSmartlead,
		Status: domain.EntitlementConnected,
	})
	sweeper := newTestSweeper(entitlements, memory.NewOrganizationRepo())

	resp := sweeper.Run(context.Background(), RunRequest{ProviderSlug: domain.ProviderSmartlead})
	stats := resp.Providers[0]
	if len(stats.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry for missing organization", stats.Errors)
	}
}

func TestSweeperMissingAPIKeyRecorded(t *testing.T) {
	entitlements := memory.NewEntitlementRepo()
	entitlements.Put(domain.Entitlement{
		OrgID: testOrg, CompanyID: testCompany,
		Capability: domain.CapabilityEmailOutreach, ProviderSlug: domain.ProviderSmartlead,
		Status: domain.EntitlementConnected,
	})
	organizations := memory.NewOrganizationRepo()
	organizations.Put(&domain.Organization{ID: testOrg, ProviderConfigs: map[string]domain.ProviderConfig{}})
	sweeper := newTestSweeper(entitlements, organizations)

	resp := sweeper.Run(context.Background(), RunRequest{ProviderSlug: domain.ProviderSmartlead})
	stats := resp.Providers[0]
	if len(stats.Errors) != 1 {
		t.Fatalf("Errors = %v, want 1 entry for missing api key", stats.Errors)
	}
}

func TestSweeperMintsOAuth2TokenForEmailBisonOrg(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "minted-token", "token_type": "bearer", "expires_in": 3600})
	}))
	defer tokenSrv.Close()

	entitlements := memory.NewEntitlementRepo()
	entitlements.Put(domain.Entitlement{
		OrgID: testOrg, CompanyID: testCompany,
		Capability: domain.CapabilityEmailOutreach, ProviderSlug: domain.ProviderEmailBison,
		Status: domain.EntitlementConnected,
	})
	organizations := memory.NewOrganizationRepo()
	organizations.Put(&domain.Organization{ID: testOrg, ProviderConfigs: map[string]domain.ProviderConfig{
		domain.ProviderEmailBison: {
			InstanceURL: "https://api.emailbison.example",
			ClientID:    "client-1", ClientSecret: "secret-1", TokenURL: tokenSrv.URL,
		},
	}})
	sweeper := newTestSweeper(entitlements, organizations)

	resp := sweeper.Run(context.Background(), RunRequest{ProviderSlug: domain.ProviderEmailBison})
	stats := resp.Providers[0]
	for _, e := range stats.Errors {
		t.Errorf("unexpected error: %s", e)
	}
}

func TestSweeperNoEntitlementsIsClean(t *testing.T) {
	sweeper := newTestSweeper(memory.NewEntitlementRepo(), memory.NewOrganizationRepo())
	resp := sweeper.Run(context.Background(), RunRequest{ProviderSlug: domain.ProviderHeyReach})
	stats := resp.Providers[0]
	if len(stats.Errors) != 0 {
		t.Errorf("Errors = %v, want none when no entitlements match", stats.Errors)
	}
	if stats.CampaignsCreated != 0 {
		t.Errorf("CampaignsCreated = %d, want 0", stats.CampaignsCreated)
	}
}

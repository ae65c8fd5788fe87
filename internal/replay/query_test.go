package replay

import (
	"context"
	"testing"
	"time"

	"github.com/ignite/outreach-gateway/internal/domain"
)

func TestListFiltersByProviderAndReplayStatus(t *testing.T) {
	controller, store, campaigns := newTestController(BatchConfig{})
	campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: testCompany, ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	insertTestEvent(t, store, domain.ProviderSmartlead, "evt-1", "campaign_status_updated",
		map[string]any{"campaign_id": "ext-1", "status": "ACTIVE"})
	insertTestEvent(t, store, domain.ProviderEmailBison, "evt-2", "campaign_status_updated",
		map[string]any{"campaign_id": "ext-2"})

	events, total, err := controller.List(context.Background(), ListFilter{ProviderSlug: domain.ProviderSmartlead, ReplayStatus: "pending"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Fatalf("total=%d len=%d, want 1 and 1", total, len(events))
	}
	if events[0].EventKey != "evt-1" {
		t.Errorf("EventKey = %q, want evt-1", events[0].EventKey)
	}
}

func TestListClampsWindowToMaxDays(t *testing.T) {
	controller, store, _ := newTestController(BatchConfig{})
	old := time.Now().UTC().Add(-200 * 24 * time.Hour)
	insertTestEvent(t, store, domain.ProviderSmartlead, "evt-old", "campaign_status_updated", map[string]any{})
	_ = old

	from := time.Now().UTC().Add(-200 * 24 * time.Hour)
	to := time.Now().UTC()
	_, _, err := controller.List(context.Background(), ListFilter{FromTS: from, ToTS: to})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
}

func TestDetailReturnsFullEvent(t *testing.T) {
	controller, store, _ := newTestController(BatchConfig{})
	insertTestEvent(t, store, domain.ProviderSmartlead, "evt-1", "campaign_status_updated",
		map[string]any{"campaign_id": "ext-1"})

	event, err := controller.Detail(context.Background(), domain.ProviderSmartlead, "evt-1")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if event.EventKey != "evt-1" {
		t.Errorf("EventKey = %q, want evt-1", event.EventKey)
	}
}

func TestDetailNotFound(t *testing.T) {
	controller, _, _ := newTestController(BatchConfig{})
	if _, err := controller.Detail(context.Background(), domain.ProviderSmartlead, "missing"); err == nil {
		t.Error("expected an error for an unknown event key")
	}
}

func TestBulkReplayByQueryResolvesKeysThenReplays(t *testing.T) {
	controller, store, campaigns := newTestController(BatchConfig{})
	campaigns.Create(context.Background(), &domain.Campaign{
		OrgID: testOrg, CompanyID: testCompany, ProviderSlug: domain.ProviderSmartlead,
		ExternalCampaignID: "ext-1", Name: "Q1", Status: domain.CampaignDrafted,
	})
	insertTestEvent(t, store, domain.ProviderSmartlead, "evt-1", "campaign_status_updated",
		map[string]any{"campaign_id": "ext-1", "status": "ACTIVE"})

	outcomes, err := controller.BulkReplayByQuery(context.Background(), ListFilter{ProviderSlug: domain.ProviderSmartlead, ReplayStatus: "pending"})
	if err != nil {
		t.Fatalf("BulkReplayByQuery: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Status != "replayed" {
		t.Fatalf("outcomes = %+v, want one replayed outcome", outcomes)
	}
}

package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ignite/outreach-gateway/internal/eventstore"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/projection"
	"github.com/ignite/outreach-gateway/internal/repository/memory"
)

type fakeScopeResolver struct {
	orgID, companyID string
	ok               bool
}

func (f fakeScopeResolver) ResolveScope(_ context.Context, _ string, _ map[string]any) (string, string, bool) {
	return f.orgID, f.companyID, f.ok
}

func newTestGateway(scopes ScopeResolver) (*Gateway, eventstore.Store) {
	store := eventstore.NewMemoryStore()
	engine := projection.NewEngine(projection.Repos{
		Campaigns: memory.NewCampaignRepo(),
		Leads:     memory.NewLeadRepo(),
		Messages:  memory.NewMessageRepo(),
		Pieces:    memory.NewPieceRepo(),
	})
	metrics := observability.NewRegistry(nil, nil, observability.SLOThresholds{})
	return NewGateway(store, engine, scopes, metrics, nil), store
}

func alwaysAccept(_ []byte) VerifyResult {
	return VerifyResult{Mode: TrustHMACSigned, Accepted: true, Synchronous: true}
}

func TestIngestRejectsOnFailedVerification(t *testing.T) {
	gateway, _ := newTestGateway(fakeScopeResolver{ok: false})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/smartlead", bytes.NewReader([]byte(`{}`)))
	res := gateway.Ingest(context.Background(), req, "smartlead", func(_ []byte) VerifyResult {
		return VerifyResult{Accepted: false, Reason: "invalid_signature", HTTPStatus: http.StatusUnauthorized}
	})
	if res.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.HTTPStatus)
	}
}

func TestIngestDuplicateIgnored(t *testing.T) {
	gateway, _ := newTestGateway(fakeScopeResolver{ok: false})
	body := []byte(`{"event_id":"evt-dup","type":"campaign_status_updated"}`)

	req1 := httptest.NewRequest(http.MethodPost, "/webhooks/smartlead", bytes.NewReader(body))
	res1 := gateway.Ingest(context.Background(), req1, "smartlead", alwaysAccept)
	if res1.HTTPStatus != http.StatusOK {
		t.Fatalf("first ingest status = %d, want 200", res1.HTTPStatus)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/webhooks/smartlead", bytes.NewReader(body))
	res2 := gateway.Ingest(context.Background(), req2, "smartlead", alwaysAccept)
	if res2.Body["status"] != "duplicate_ignored" {
		t.Errorf("second ingest body = %+v, want duplicate_ignored", res2.Body)
	}
}

func TestIngestUnresolvedScopeDeadLetters(t *testing.T) {
	gateway, store := newTestGateway(fakeScopeResolver{ok: false})
	body := []byte(`{"event_id":"evt-1","type":"campaign_status_updated","campaign_id":"ext-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/smartlead", bytes.NewReader(body))
	res := gateway.Ingest(context.Background(), req, "smartlead", alwaysAccept)

	if res.Body["status"] != "dead_letter_recorded" {
		t.Fatalf("body = %+v, want dead_letter_recorded", res.Body)
	}
	event, err := store.Get(context.Background(), "smartlead", "evt-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, _, _, ok := event.DeadLetterInfo(); !ok {
		t.Error("expected a _dead_letter payload record")
	}
}

func TestIngestMalformedBodyDeadLetters(t *testing.T) {
	gateway, _ := newTestGateway(fakeScopeResolver{ok: true, orgID: "org-1", companyID: "company-1"})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/smartlead", bytes.NewReader([]byte("not json")))
	res := gateway.Ingest(context.Background(), req, "smartlead", alwaysAccept)
	if res.Body["reason"] != "malformed_payload" {
		t.Errorf("body = %+v, want reason malformed_payload", res.Body)
	}
}

func TestIngestSynchronousProcessesOnScopeResolved(t *testing.T) {
	gateway, store := newTestGateway(fakeScopeResolver{ok: true, orgID: "org-1", companyID: "company-1"})
	body := []byte(`{"event_id":"evt-2","type":"totally_unknown_family"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/smartlead", bytes.NewReader(body))
	res := gateway.Ingest(context.Background(), req, "smartlead", alwaysAccept)

	// Unknown family -> projection.Apply returns an error -> dead-lettered,
	// but the key point under test is that Apply was actually attempted
	// synchronously (status reflects the failure, not a bare accept).
	if res.Body["status"] != "dead_letter_recorded" {
		t.Fatalf("body = %+v, want dead_letter_recorded", res.Body)
	}
	event, err := store.Get(context.Background(), "smartlead", "evt-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if event.Status != "dead_letter" {
		t.Errorf("status = %v, want dead_letter", event.Status)
	}
}

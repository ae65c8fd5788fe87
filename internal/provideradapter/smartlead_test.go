package provideradapter

import (
	"context"
	"net/http"
	"testing"
)

func TestSmartleadListCampaignsMapsFields(t *testing.T) {
	doer := &fakeDoer{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[{"id":"c1","name":"Q1","status":"ACTIVE","client_id":"cl-1"}]`), nil
	}}
	adapter := NewSmartleadAdapter(Credentials{APIKey: "k", InstanceURL: "https://api.example.com"}, doer)

	records, err := adapter.ListCampaigns(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	r := records[0]
	if r.ExternalID != "c1" || r.Name != "Q1" || r.Status != "ACTIVE" || r.ClientID != "cl-1" {
		t.Errorf("record = %+v", r)
	}
}

func TestSmartleadCreateCampaignUsesProvidedNameAsFallback(t *testing.T) {
	doer := &fakeDoer{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"id":"c2","status":"DRAFTED"}`), nil
	}}
	adapter := NewSmartleadAdapter(Credentials{APIKey: "k", InstanceURL: "https://api.example.com"}, doer)

	record, err := adapter.CreateCampaign(context.Background(), "Q2 Outreach")
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if record.ExternalID != "c2" || record.Status != "DRAFTED" {
		t.Errorf("record = %+v", record)
	}
}

func TestSmartleadUpdateCampaignStatusPropagatesProviderError(t *testing.T) {
	doer := &fakeDoer{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
	}}
	adapter := NewSmartleadAdapter(Credentials{APIKey: "k", InstanceURL: "https://api.example.com"}, doer)

	if err := adapter.UpdateCampaignStatus(context.Background(), "ext-1", "PAUSED"); err == nil {
		t.Fatal("expected an error on a 503 response")
	}
}

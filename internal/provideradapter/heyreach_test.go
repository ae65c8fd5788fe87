package provideradapter

import (
	"context"
	"net/http"
	"testing"
)

func TestHeyReachListCampaignsReadsItemsEnvelope(t *testing.T) {
	doer := &fakeDoer{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"items":[{"id":"seq-1","name":"Outbound","status":"active"}]}`), nil
	}}
	adapter := NewHeyReachAdapter(Credentials{APIKey: "k", InstanceURL: "https://api.heyreach.io"}, doer)

	records, err := adapter.ListCampaigns(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(records) != 1 || records[0].ExternalID != "seq-1" {
		t.Fatalf("records = %+v", records)
	}
}

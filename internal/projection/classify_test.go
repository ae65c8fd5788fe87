package projection

import (
	"errors"
	"testing"
)

func TestClassifyFamily(t *testing.T) {
	tests := []struct {
		eventType string
		want      Family
	}{
		{"campaign_status_updated", FamilyCampaign},
		{"campaign_lead_added", FamilyLead},
		{"lead_status_updated", FamilyLead},
		{"email_sent", FamilyMessage},
		{"reply_received", FamilyMessage},
		{"piece.delivered", FamilyDirectMailPiece},
		{"piece.in_transit", FamilyDirectMailPiece},
		{"something_else", FamilyUnknown},
		{"", FamilyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			if got := ClassifyFamily(tt.eventType); got != tt.want {
				t.Errorf("ClassifyFamily(%q) = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, Unknown},
		{"timeout", errors.New("dial tcp: i/o timeout"), Transient},
		{"temporary", errors.New("temporarily unavailable"), Transient},
		{"connection", errors.New("connection refused"), Transient},
		{"constraint", errors.New("unique constraint violation"), Terminal},
		{"invalid", errors.New("invalid campaign_id"), Terminal},
		{"not found", errors.New("campaign not found"), Terminal},
		{"missing", errors.New("missing lead_id in payload"), Terminal},
		{"unrecognized", errors.New("some other weird error"), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategoryRetryable(t *testing.T) {
	if !Transient.Retryable() {
		t.Error("Transient should be retryable")
	}
	if Terminal.Retryable() {
		t.Error("Terminal should not be retryable")
	}
	if Unknown.Retryable() {
		t.Error("Unknown should not be retryable")
	}
}

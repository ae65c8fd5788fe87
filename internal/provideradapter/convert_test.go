package provideradapter

import "testing"

func TestLeadRecordsFromRawToleratesCamelAndSnakeCase(t *testing.T) {
	rows := []map[string]any{
		{"leadId": "l1", "email": "a@example.com", "firstName": "Ann"},
		{"lead_id": "l2", "email": "b@example.com", "first_name": "Bea"},
	}
	out := leadRecordsFromRaw(rows)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].ExternalID != "l1" || out[0].FirstName != "Ann" {
		t.Errorf("out[0] = %+v", out[0])
	}
	if out[1].ExternalID != "l2" || out[1].FirstName != "Bea" {
		t.Errorf("out[1] = %+v", out[1])
	}
}

func TestInboxRecordsFromRawReadsWarmupBool(t *testing.T) {
	rows := []map[string]any{{"id": "a1", "email": "x@example.com", "warmupEnabled": true}}
	out := inboxRecordsFromRaw(rows)
	if !out[0].WarmupEnabled {
		t.Errorf("WarmupEnabled = false, want true")
	}
}

func TestAnalyticsFromRawSumsCounters(t *testing.T) {
	row := map[string]any{"sent": float64(100), "open_count": float64(40), "replyCount": float64(5), "bounced": float64(2)}
	a := analyticsFromRaw(row)
	if a.Sent != 100 || a.Opened != 40 || a.Replied != 5 || a.Bounced != 2 {
		t.Errorf("analytics = %+v", a)
	}
}

func TestToStringHandlesNilAndNonString(t *testing.T) {
	if toString(nil) != "" {
		t.Error("toString(nil) should be empty")
	}
	if toString(42) != "42" {
		t.Errorf("toString(42) = %q, want 42", toString(42))
	}
	if toString("already") != "already" {
		t.Error("toString should pass strings through unchanged")
	}
}

func TestToIntHandlesFloatAndUnknown(t *testing.T) {
	if toInt(float64(7)) != 7 {
		t.Error("toInt should convert float64")
	}
	if toInt("not a number") != 0 {
		t.Error("toInt should default to 0 for unrecognized types")
	}
}

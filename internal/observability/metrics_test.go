package observability

import (
	"context"
	"errors"
	"testing"
)

func TestMetricKeySortsLabels(t *testing.T) {
	a := MetricKey("webhook.received", map[string]string{"b": "2", "a": "1"})
	b := MetricKey("webhook.received", map[string]string{"a": "1", "b": "2"})
	if a != b {
		t.Errorf("MetricKey should be order-independent: %q != %q", a, b)
	}
}

func TestMetricKeyNoLabels(t *testing.T) {
	if got := MetricKey("webhook.received", nil); got != "webhook.received" {
		t.Errorf("MetricKey = %q, want bare name", got)
	}
}

func TestRegistryIncrAndSnapshot(t *testing.T) {
	r := NewRegistry(nil, nil, SLOThresholds{})
	r.Incr("webhook.received", map[string]string{"provider": "lob"}, 1)
	r.Incr("webhook.received", map[string]string{"provider": "lob"}, 2)
	r.Incr("webhook.received", map[string]string{"provider": "smartlead"}, 1)

	snap := r.Snapshot()
	if snap[MetricKey("webhook.received", map[string]string{"provider": "lob"})] != 3 {
		t.Errorf("lob counter = %d, want 3", snap[MetricKey("webhook.received", map[string]string{"provider": "lob"})])
	}
	if snap[MetricKey("webhook.received", map[string]string{"provider": "smartlead"})] != 1 {
		t.Errorf("smartlead counter = %d, want 1", snap[MetricKey("webhook.received", map[string]string{"provider": "smartlead"})])
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry(nil, nil, SLOThresholds{})
	r.Incr("x", nil, 5)
	r.Reset()
	if len(r.Snapshot()) != 0 {
		t.Error("expected empty snapshot after Reset")
	}
}

type fakeWriter struct {
	saved      map[string]int
	saveErr    error
	savedCalls int
}

func (w *fakeWriter) SaveSnapshot(_ context.Context, source, requestID string, counters map[string]int) error {
	w.savedCalls++
	w.saved = counters
	return w.saveErr
}

type fakeExporter struct {
	exportErr  error
	exportCall int
}

func (e *fakeExporter) Export(_ context.Context, source, requestID string, counters map[string]int) error {
	e.exportCall++
	return e.exportErr
}

func TestPersistSnapshotWritesAndResets(t *testing.T) {
	w := &fakeWriter{}
	r := NewRegistry(w, nil, SLOThresholds{})
	r.Incr("webhook.received", nil, 4)

	if err := r.PersistSnapshot(context.Background(), "test", true); err != nil {
		t.Fatalf("PersistSnapshot: %v", err)
	}
	if w.savedCalls != 1 {
		t.Errorf("SaveSnapshot calls = %d, want 1", w.savedCalls)
	}
	if w.saved["webhook.received"] != 4 {
		t.Errorf("saved counter = %d, want 4", w.saved["webhook.received"])
	}
	if len(r.Snapshot()) != 0 {
		t.Error("expected counters reset after persist")
	}
}

func TestPersistSnapshotWriterErrorPropagates(t *testing.T) {
	w := &fakeWriter{saveErr: errors.New("db down")}
	r := NewRegistry(w, nil, SLOThresholds{})
	if err := r.PersistSnapshot(context.Background(), "test", false); err == nil {
		t.Fatal("expected error from failing writer")
	}
}

func TestPersistSnapshotExportFailureDoesNotFailPersist(t *testing.T) {
	w := &fakeWriter{}
	e := &fakeExporter{exportErr: errors.New("network down")}
	r := NewRegistry(w, e, SLOThresholds{})
	if err := r.PersistSnapshot(context.Background(), "test", false); err != nil {
		t.Fatalf("PersistSnapshot should not fail on export error: %v", err)
	}
	if e.exportCall != 1 {
		t.Errorf("export calls = %d, want 1", e.exportCall)
	}
}

func TestCheckSLOsEmitsThresholdExceeded(t *testing.T) {
	r := NewRegistry(nil, nil, SLOThresholds{SignatureRejectRate: 0.1})
	r.Incr("webhook.received", nil, 10)
	r.Incr("webhook.signature_rejected", nil, 5) // 50% > 10% threshold

	if err := r.PersistSnapshot(context.Background(), "test", false); err != nil {
		t.Fatalf("PersistSnapshot: %v", err)
	}
	snap := r.Snapshot()
	if snap[MetricKey("slo.threshold_exceeded", map[string]string{"metric": "signature_reject_rate"})] != 1 {
		t.Error("expected slo.threshold_exceeded counter for signature_reject_rate")
	}
}

func TestCheckSLOsSkipsZeroDenominator(t *testing.T) {
	r := NewRegistry(nil, nil, SLOThresholds{SignatureRejectRate: 0.1})
	r.Incr("webhook.signature_rejected", nil, 5)
	if err := r.PersistSnapshot(context.Background(), "test", false); err != nil {
		t.Fatalf("PersistSnapshot: %v", err)
	}
	snap := r.Snapshot()
	if snap[MetricKey("slo.threshold_exceeded", map[string]string{"metric": "signature_reject_rate"})] != 0 {
		t.Error("should not alert when denominator is zero")
	}
}

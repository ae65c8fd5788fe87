// Package observability implements the in-process counter map, periodic
// persistence, optional export, and SLO threshold checks described in
// §4.10.
package observability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/pkg/logger"
)

// MetricKey renders a metric name and its labels as
// "<name>|k1=v1,k2=v2,...", with labels sorted by key so the same
// logical metric always collapses to the same key regardless of the
// order callers pass labels in.
func MetricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, labels[k]))
	}
	return name + "|" + strings.Join(parts, ",")
}

// SnapshotWriter persists a metrics snapshot row. Implemented against
// eventstore-adjacent storage by the caller; kept as a narrow interface so
// observability has no direct repository dependency.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, source, requestID string, counters map[string]int) error
}

// Exporter pushes a snapshot to an external sink.
type Exporter interface {
	Export(ctx context.Context, source, requestID string, counters map[string]int) error
}

// Registry is the mutex-guarded in-process counter map.
type Registry struct {
	mu       sync.Mutex
	counters map[string]int

	writer   SnapshotWriter
	exporter Exporter
	thresholds SLOThresholds
}

// SLOThresholds mirrors config.SLOThresholds to avoid an import cycle
// between observability and config; callers pass the loaded values in.
type SLOThresholds struct {
	SignatureRejectRate   float64
	DeadLetterRate        float64
	ProjectionFailureRate float64
	ReplayFailureRate     float64
	DuplicateIgnoreRate   float64
}

// NewRegistry constructs a Registry. writer and exporter may be nil;
// persistence/export are then no-ops.
func NewRegistry(writer SnapshotWriter, exporter Exporter, thresholds SLOThresholds) *Registry {
	return &Registry{
		counters:   make(map[string]int),
		writer:     writer,
		exporter:   exporter,
		thresholds: thresholds,
	}
}

// Incr increments the named/labeled counter by delta (delta may be
// negative, though no caller currently needs that).
func (r *Registry) Incr(name string, labels map[string]string, delta int) {
	key := MetricKey(name, labels)
	r.mu.Lock()
	r.counters[key] += delta
	r.mu.Unlock()
}

// Snapshot returns a copy of the current counters without resetting them.
func (r *Registry) Snapshot() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}
	return out
}

// Reset clears all counters.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.counters = make(map[string]int)
	r.mu.Unlock()
}

// PersistSnapshot writes the current counters to storage, optionally
// resets them, attempts an export if one is configured, evaluates SLO
// thresholds, and emits a structured event. Export failures are logged but
// never fail the persist (§4.10).
func (r *Registry) PersistSnapshot(ctx context.Context, source string, resetAfterPersist bool) error {
	requestID := uuid.New().String()
	counters := r.Snapshot()

	if r.writer != nil {
		if err := r.writer.SaveSnapshot(ctx, source, requestID, counters); err != nil {
			return fmt.Errorf("observability: persist snapshot: %w", err)
		}
	}
	if resetAfterPersist {
		r.Reset()
	}

	if r.exporter != nil {
		if err := r.exporter.Export(ctx, source, requestID, counters); err != nil {
			logger.Event("metrics.export_failed", map[string]any{
				"source":     source,
				"request_id": requestID,
				"error":      err.Error(),
			})
		}
	}

	logger.Event("metrics.persisted", map[string]any{
		"source":     source,
		"request_id": requestID,
		"counters":   counters,
	})

	r.checkSLOs(counters)
	return nil
}

// checkSLOs computes the named rates against configured thresholds and
// emits slo.threshold_exceeded counters + events for any rate that
// exceeds its threshold. Rates divide an outcome counter by its matching
// total counter; a zero-denominator rate is skipped (nothing to alert on).
func (r *Registry) checkSLOs(counters map[string]int) {
	rates := map[string]struct {
		numeratorPrefix string
		denominator     string
		threshold       float64
	}{
		"signature_reject_rate":   {"webhook.signature_rejected", "webhook.received", r.thresholds.SignatureRejectRate},
		"dead_letter_rate":        {"projection.dead_letter", "webhook.accepted", r.thresholds.DeadLetterRate},
		"projection_failure_rate": {"projection.failed", "projection.attempted", r.thresholds.ProjectionFailureRate},
		"replay_failure_rate":     {"replay.failed", "replay.attempted", r.thresholds.ReplayFailureRate},
		"duplicate_ignore_rate":   {"eventstore.duplicate_ignored", "webhook.received", r.thresholds.DuplicateIgnoreRate},
	}

	for metric, cfg := range rates {
		num := sumByPrefix(counters, cfg.numeratorPrefix)
		den := sumByPrefix(counters, cfg.denominator)
		if den == 0 {
			continue
		}
		rate := float64(num) / float64(den)
		if rate > cfg.threshold {
			r.Incr("slo.threshold_exceeded", map[string]string{"metric": metric}, 1)
			logger.Event("slo.threshold_exceeded", map[string]any{
				"metric":    metric,
				"rate":      rate,
				"threshold": cfg.threshold,
			})
		}
	}
}

func sumByPrefix(counters map[string]int, prefix string) int {
	total := 0
	for k, v := range counters {
		if k == prefix || strings.HasPrefix(k, prefix+"|") {
			total += v
		}
	}
	return total
}

// Package replay implements the dead-letter listing/detail surface and
// the bounded-concurrency bulk replay controller (§4.8).
package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/eventstore"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/pkg/distlock"
	"github.com/ignite/outreach-gateway/internal/projection"
)

// ErrTooManyEvents is returned when a bulk replay request's event count
// exceeds the configured max_events_per_run.
var ErrTooManyEvents = errors.New("replay: requested event count exceeds max_events_per_run")

// BatchConfig holds the config-bounded knobs governing bulk replay (§4.8).
type BatchConfig struct {
	BatchSize          int
	MaxEventsPerRun    int
	SleepMillis        int
	MaxSleepMillis     int
	BackoffMultiplier  float64
	ConcurrentWorkers  int
	QueueSize          int
}

// Controller runs single and bulk replay against the event store and
// projection engine.
type Controller struct {
	store   eventstore.Store
	engine  *projection.Engine
	metrics *observability.Registry
	cfg     BatchConfig

	// NewLock builds a distributed lock keyed on provider slug, serializing
	// concurrent bulk-replay runs against the same provider. Nil disables
	// locking.
	NewLock func(key string) distlock.DistLock
}

func NewController(store eventstore.Store, engine *projection.Engine, metrics *observability.Registry, cfg BatchConfig) *Controller {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = 2.0
	}
	return &Controller{store: store, engine: engine, metrics: metrics, cfg: cfg}
}

// ReplayOutcome is the per-event result of a replay attempt.
type ReplayOutcome struct {
	EventKey string `json:"event_key"`
	Status   string `json:"status"` // replayed | dead_letter | duplicate_request_key_ignored
	Error    string `json:"error,omitempty"`
}

// ReplayOne re-applies projection for a single event (§4.8 single-event
// replay). On success, status becomes replayed, replay_count increments
// by exactly 1, last_replay_at is stamped, last_error cleared. On
// failure, the event is re-marked dead_letter with an updated error.
func (c *Controller) ReplayOne(ctx context.Context, providerSlug, eventKey string) ReplayOutcome {
	event, err := c.store.Get(ctx, providerSlug, eventKey)
	if err != nil {
		return ReplayOutcome{EventKey: eventKey, Status: "dead_letter", Error: err.Error()}
	}

	orgID, companyID := "", ""
	if event.OrgID != nil {
		orgID = *event.OrgID
	}
	if event.CompanyID != nil {
		companyID = *event.CompanyID
	}

	c.metrics.Incr("replay.attempted", map[string]string{"provider": providerSlug}, 1)
	if err := c.engine.Apply(ctx, orgID, companyID, providerSlug, event); err != nil {
		cat := projection.ClassifyError(err)
		errMsg := err.Error()
		payload := event.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		payload["_dead_letter"] = map[string]any{
			"reason":      "projection_failure",
			"retryable":   cat.Retryable(),
			"error":       errMsg,
			"recorded_at": time.Now().UTC().Format(time.RFC3339),
		}
		status := domain.EventDeadLetter
		_ = c.store.UpdateByKey(ctx, providerSlug, eventKey, eventstore.UpdateFields{
			Status: &status, Payload: payload, LastError: &errMsg,
		})
		c.metrics.Incr("replay.failed", map[string]string{"provider": providerSlug}, 1)
		return ReplayOutcome{EventKey: eventKey, Status: "dead_letter", Error: errMsg}
	}

	now := time.Now().UTC()
	status := domain.EventReplayed
	newCount := event.ReplayCount + 1
	empty := ""
	_ = c.store.UpdateByKey(ctx, providerSlug, eventKey, eventstore.UpdateFields{
		Status: &status, ReplayCount: &newCount, LastReplayAt: &now, LastError: &empty,
	})
	return ReplayOutcome{EventKey: eventKey, Status: "replayed"}
}

// BulkReplay replays a fixed list of event keys under a bounded worker
// pool with in-flight cap = queue_size, duplicate-key dedup within the
// request, and adaptive inter-batch backoff. providerSlug is shared by
// every key in the list — bulk replay is always scoped to one provider.
func (c *Controller) BulkReplay(ctx context.Context, providerSlug string, eventKeys []string) ([]ReplayOutcome, error) {
	if len(eventKeys) > c.cfg.MaxEventsPerRun && c.cfg.MaxEventsPerRun > 0 {
		return nil, ErrTooManyEvents
	}

	if c.NewLock != nil {
		lock := c.NewLock(fmt.Sprintf("bulk-replay:%s", providerSlug))
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("replay: lock acquire failed: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("replay: bulk replay already running for provider %s", providerSlug)
		}
		defer lock.Release(ctx)
	}

	seen := make(map[string]bool, len(eventKeys))
	deduped := make([]string, 0, len(eventKeys))
	dupOutcomes := make([]ReplayOutcome, 0)
	for _, k := range eventKeys {
		if seen[k] {
			dupOutcomes = append(dupOutcomes, ReplayOutcome{EventKey: k, Status: "replayed", Error: "duplicate_request_key_ignored"})
			continue
		}
		seen[k] = true
		deduped = append(deduped, k)
	}

	outcomes := make([]ReplayOutcome, 0, len(deduped))
	currentSleep := c.cfg.SleepMillis
	if currentSleep <= 0 {
		currentSleep = 250
	}
	maxSleep := c.cfg.MaxSleepMillis
	if maxSleep <= 0 {
		maxSleep = 10000
	}

	batchSize := c.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(deduped)
		if batchSize == 0 {
			batchSize = 1
		}
	}

	for start := 0; start < len(deduped); start += batchSize {
		end := start + batchSize
		if end > len(deduped) {
			end = len(deduped)
		}
		batch := deduped[start:end]

		results := c.runBatch(ctx, providerSlug, batch)
		outcomes = append(outcomes, results...)

		anyTransientFailure := false
		for _, res := range results {
			if res.Status == "dead_letter" {
				anyTransientFailure = true
			}
		}
		if anyTransientFailure {
			currentSleep = int(float64(currentSleep) * c.cfg.BackoffMultiplier)
			if currentSleep > maxSleep {
				currentSleep = maxSleep
			}
		} else {
			currentSleep = currentSleep / 2
			floor := c.cfg.SleepMillis
			if floor <= 0 {
				floor = 250
			}
			if currentSleep < floor {
				currentSleep = floor
			}
		}

		if end < len(deduped) {
			select {
			case <-time.After(time.Duration(currentSleep) * time.Millisecond):
			case <-ctx.Done():
				break
			}
		}
	}

	outcomes = append(outcomes, dupOutcomes...)
	_ = c.metrics.PersistSnapshot(ctx, fmt.Sprintf("replay:%s", providerSlug), false)
	return outcomes, nil
}

// runBatch replays one batch through a bounded worker pool: the in-flight
// count never exceeds queue_size (§8 universal invariant 6).
func (c *Controller) runBatch(ctx context.Context, providerSlug string, keys []string) []ReplayOutcome {
	results := make([]ReplayOutcome, len(keys))
	sem := make(chan struct{}, c.cfg.QueueSize)
	var wg sync.WaitGroup

	for i, key := range keys {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, key string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.ReplayOne(ctx, providerSlug, key)
		}(i, key)
	}
	wg.Wait()
	return results
}

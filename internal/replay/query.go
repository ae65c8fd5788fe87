package replay

import (
	"context"
	"time"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/eventstore"
)

// maxWindowDays bounds from_ts/to_ts listing queries (§4.8: "bounded by a
// max window, e.g. 93 days").
const maxWindowDays = 93

// ListFilter is the admin-facing dead-letter/event listing request.
type ListFilter struct {
	ProviderSlug string
	FromTS       time.Time
	ToTS         time.Time
	Reason       string
	ReplayStatus string // all | pending | replayed
	OrgID        string
	Limit        int
	Offset       int
}

// List returns events matching the filter, bounding the time window to
// maxWindowDays when both bounds are given.
func (c *Controller) List(ctx context.Context, f ListFilter) ([]domain.WebhookEvent, int, error) {
	if !f.FromTS.IsZero() && !f.ToTS.IsZero() {
		if f.ToTS.Sub(f.FromTS) > maxWindowDays*24*time.Hour {
			f.FromTS = f.ToTS.Add(-maxWindowDays * 24 * time.Hour)
		}
	}
	return c.store.List(ctx, eventstore.ListFilter{
		ProviderSlug: f.ProviderSlug,
		OrgID:        f.OrgID,
		ReplayStatus: f.ReplayStatus,
		Reason:       f.Reason,
		FromTS:       f.FromTS,
		ToTS:         f.ToTS,
		Limit:        f.Limit,
		Offset:       f.Offset,
	})
}

// Detail returns the full event row, including payload, for one event key.
func (c *Controller) Detail(ctx context.Context, providerSlug, eventKey string) (*domain.WebhookEvent, error) {
	return c.store.Get(ctx, providerSlug, eventKey)
}

// BulkReplayByQuery resolves a query to a concrete list of event keys and
// runs BulkReplay against them — the alternate bulk-replay input mode to
// an explicit key list (§4.8).
func (c *Controller) BulkReplayByQuery(ctx context.Context, f ListFilter) ([]ReplayOutcome, error) {
	events, _, err := c.List(ctx, f)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(events))
	for _, e := range events {
		keys = append(keys, e.EventKey)
	}
	return c.BulkReplay(ctx, f.ProviderSlug, keys)
}

// Package eventstore implements the append-only webhook event store
// (§4.5). The storage layer's unique constraint on (provider_slug,
// event_key) is the system's only cross-request synchronization
// primitive: concurrent deliveries of the same event race on Insert, and
// exactly one of them wins.
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/ignite/outreach-gateway/internal/domain"
)

// ErrDuplicate is returned by Insert when (provider_slug, event_key)
// already exists. Callers treat this as an idempotent accept, not a
// failure.
var ErrDuplicate = errors.New("eventstore: duplicate event key")

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("eventstore: event not found")

// ListFilter controls pagination and filtering for the admin listing
// endpoints (§6, §4.14).
type ListFilter struct {
	ProviderSlug string
	EventType    string
	OrgID        string
	Status       domain.WebhookEventStatus
	ReplayStatus string // all | pending | replayed
	Reason       string
	FromTS       time.Time
	ToTS         time.Time
	Limit        int
	Offset       int
}

// UpdateFields holds the mutable fields of a WebhookEvent row. Nil
// pointers are left untouched.
type UpdateFields struct {
	Status       *domain.WebhookEventStatus
	Payload      map[string]any
	ReplayCount  *int
	LastReplayAt *time.Time
	LastError    *string
	ProcessedAt  *time.Time
	OrgID        *string
	CompanyID    *string
}

// Store is the event-store contract. Implementations must enforce
// (provider_slug, event_key) uniqueness atomically — Insert is the only
// place that constraint is checked.
type Store interface {
	// Insert appends a new event row. Returns ErrDuplicate if
	// (event.ProviderSlug, event.EventKey) already exists; the row is left
	// untouched in that case.
	Insert(ctx context.Context, event *domain.WebhookEvent) (string, error)

	// Get returns a single event by its natural key.
	Get(ctx context.Context, providerSlug, eventKey string) (*domain.WebhookEvent, error)

	// GetByID returns a single event by its storage ID (used by detail
	// views and explicit-key-list bulk replay).
	GetByID(ctx context.Context, id string) (*domain.WebhookEvent, error)

	// UpdateByKey applies partial updates to the row identified by
	// (providerSlug, eventKey). Used by the projection engine and the
	// replay controller.
	UpdateByKey(ctx context.Context, providerSlug, eventKey string, u UpdateFields) error

	// List returns events matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]domain.WebhookEvent, int, error)
}

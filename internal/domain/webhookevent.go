package domain

import "time"

// WebhookEventStatus is the lifecycle of a single event-store row.
type WebhookEventStatus string

const (
	EventAccepted   WebhookEventStatus = "accepted"
	EventProcessed  WebhookEventStatus = "processed"
	EventReplayed   WebhookEventStatus = "replayed"
	EventFailed     WebhookEventStatus = "failed"
	EventDeadLetter WebhookEventStatus = "dead_letter"
)

// WebhookEvent is the append-only event-store row. (provider_slug, event_key)
// is unique and enforced by the storage layer; this is the only
// cross-request synchronization primitive the projection engine relies on.
//
// Payload may carry reserved sub-records:
//   - "_ingestion": trust metadata recorded at ingest time.
//   - "_dead_letter": {reason, retryable, error, recorded_at}, present only
//     once the event has been dead-lettered.
//   - "_schema_validation": {status, ...} for schema-versioned providers.
//   - "_archive": {s3_key} when the payload was archived out-of-line.
type WebhookEvent struct {
	ID           string             `json:"id" db:"id"`
	ProviderSlug string             `json:"provider_slug" db:"provider_slug"`
	EventKey     string             `json:"event_key" db:"event_key"`
	EventType    string             `json:"event_type" db:"event_type"`
	Status       WebhookEventStatus `json:"status" db:"status"`
	Payload      map[string]any     `json:"payload" db:"payload"`
	ReplayCount  int                `json:"replay_count" db:"replay_count"`
	LastReplayAt *time.Time         `json:"last_replay_at,omitempty" db:"last_replay_at"`
	LastError    *string            `json:"last_error,omitempty" db:"last_error"`
	OrgID        *string            `json:"org_id,omitempty" db:"org_id"`
	CompanyID    *string            `json:"company_id,omitempty" db:"company_id"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	ProcessedAt  *time.Time         `json:"processed_at,omitempty" db:"processed_at"`
}

// DeadLetterInfo reads back the reserved "_dead_letter" payload sub-record,
// if present.
func (e *WebhookEvent) DeadLetterInfo() (reason string, retryable bool, errMsg string, ok bool) {
	raw, found := e.Payload["_dead_letter"]
	if !found {
		return "", false, "", false
	}
	m, isMap := raw.(map[string]any)
	if !isMap {
		return "", false, "", false
	}
	reason, _ = m["reason"].(string)
	retryable, _ = m["retryable"].(bool)
	errMsg, _ = m["error"].(string)
	return reason, retryable, errMsg, true
}

// MetricsSnapshot is a point-in-time persisted copy of the in-process
// counter map.
type MetricsSnapshot struct {
	ID        string         `json:"id" db:"id"`
	Source    string         `json:"source" db:"source"`
	RequestID *string        `json:"request_id,omitempty" db:"request_id"`
	Counters  map[string]int `json:"counters" db:"counters"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

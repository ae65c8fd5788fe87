// Package normalize maps provider-specific status and direction vocabularies
// onto the canonical enums declared in internal/domain. Every function here
// is a pure total function: any input string (including empty) resolves to
// a declared enum value, never an error.
package normalize

import (
	"strings"

	"github.com/ignite/outreach-gateway/internal/domain"
)

var campaignStatusTable = map[string]domain.CampaignStatus{
	"DRAFTED":          domain.CampaignDrafted,
	"DRAFT":            domain.CampaignDrafted,
	"LAUNCHING":        domain.CampaignDrafted,
	"QUEUED":           domain.CampaignDrafted,
	"ACTIVE":           domain.CampaignActive,
	"START":            domain.CampaignActive,
	"STARTED":          domain.CampaignActive,
	"RUNNING":          domain.CampaignActive,
	"PAUSED":           domain.CampaignPaused,
	"PAUSE":            domain.CampaignPaused,
	"STOPPED":          domain.CampaignStopped,
	"STOP":             domain.CampaignStopped,
	"ARCHIVED":         domain.CampaignStopped,
	"DELETED":          domain.CampaignStopped,
	"FAILED":           domain.CampaignStopped,
	"PENDING DELETION": domain.CampaignStopped,
	"COMPLETED":        domain.CampaignCompleted,
	"DONE":             domain.CampaignCompleted,
}

// CampaignStatus maps a raw provider campaign-status string onto the
// canonical CampaignStatus enum. Unknown or empty input defaults to
// CampaignDrafted.
func CampaignStatus(raw string) domain.CampaignStatus {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return domain.CampaignDrafted
	}
	if v, ok := campaignStatusTable[key]; ok {
		return v
	}
	return domain.CampaignDrafted
}

var leadStatusTable = map[string]domain.LeadStatus{
	"active":             domain.LeadActive,
	"verified":           domain.LeadActive,
	"paused":             domain.LeadPaused,
	"pause":              domain.LeadPaused,
	"unsubscribed":       domain.LeadUnsubscribed,
	"unsubscribe":        domain.LeadUnsubscribed,
	"replied":            domain.LeadReplied,
	"reply":              domain.LeadReplied,
	"bounced":            domain.LeadBounced,
	"bounce":             domain.LeadBounced,
	"pending":            domain.LeadPending,
	"verifying":          domain.LeadPending,
	"unverified":         domain.LeadPending,
	"unknown":            domain.LeadPending,
	"risky":              domain.LeadPending,
	"inactive":           domain.LeadPending,
	"in_sequence":        domain.LeadActive,
	"sequence_finished":  domain.LeadContacted,
	"sequence_stopped":   domain.LeadPaused,
	"never_contacted":    domain.LeadPending,
	"contacted":          domain.LeadContacted,
	"connected":          domain.LeadConnected,
	"not_interested":     domain.LeadNotInterested,
	"not interested":     domain.LeadNotInterested,
}

// LeadStatus maps a raw provider lead-status string onto the canonical
// LeadStatus enum. Unknown or empty input defaults to LeadUnknown. Note the
// asymmetry preserved from the source system: the provider literal
// "unknown" itself normalizes to LeadPending, not LeadUnknown — LeadUnknown
// is reserved for values absent from the table entirely.
func LeadStatus(raw string) domain.LeadStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return domain.LeadUnknown
	}
	if v, ok := leadStatusTable[key]; ok {
		return v
	}
	return domain.LeadUnknown
}

// MessageDirection infers the canonical direction from a raw provider
// direction string. Unknown or empty input defaults to
// MessageUnknownDirection.
func MessageDirection(raw string) domain.MessageDirection {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch key {
	case "inbound", "reply", "replied":
		return domain.MessageInbound
	case "outbound", "sent":
		return domain.MessageOutbound
	default:
		return domain.MessageUnknownDirection
	}
}

// MessageDirectionFromEventType infers direction from a webhook event-type
// name rather than an explicit direction field, per §4.7: names containing
// "reply" are inbound, names containing "message" or "sent" are outbound,
// otherwise unknown.
func MessageDirectionFromEventType(eventType string) domain.MessageDirection {
	key := strings.ToLower(eventType)
	if strings.Contains(key, "reply") {
		return domain.MessageInbound
	}
	if strings.Contains(key, "message") || strings.Contains(key, "sent") {
		return domain.MessageOutbound
	}
	return domain.MessageUnknownDirection
}

var pieceStatusTable = map[string]domain.PieceStatus{
	"piece.created":    domain.PieceQueued,
	"piece.processed":  domain.PieceProcessing,
	"piece.in_transit": domain.PieceInTransit,
	"piece.delivered":  domain.PieceDelivered,
	"piece.returned":   domain.PieceReturned,
	"piece.canceled":   domain.PieceCanceled,
	"piece.re-routed":  domain.PieceInTransit,
	"piece.failed":     domain.PieceFailed,
}

// PieceStatusFromEventType maps a normalized direct-mail event type to the
// canonical PieceStatus enum. Unrecognized event types return
// domain.PieceUnknown and ok=false so the caller can decide whether an
// unrecognized event type should still be recorded (it should — event
// ingest never rejects on an unmapped type, only projection may choose
// not to update status).
func PieceStatusFromEventType(eventType string) (status domain.PieceStatus, ok bool) {
	key := strings.ToLower(strings.TrimSpace(eventType))
	if v, found := pieceStatusTable[key]; found {
		return v, true
	}
	return domain.PieceUnknown, false
}

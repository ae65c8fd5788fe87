// Package projection applies one event-store row onto the domain tables
// (campaigns, leads, messages, direct-mail pieces), per the per-family
// rules in §4.7.
package projection

import "strings"

// Category is the classification of a projection failure.
type Category string

const (
	Transient Category = "transient"
	Terminal  Category = "terminal"
	Unknown   Category = "unknown"
)

// Retryable reports whether a projection failure category should be
// recorded as retryable in the dead-letter record.
func (c Category) Retryable() bool { return c == Transient }

var (
	transientSubstrings = []string{"timeout", "temporar", "connection"}
	terminalSubstrings  = []string{"constraint", "invalid", "not found", "missing"}
)

// ClassifyError classifies a projection failure by substring match on its
// message (§4.7). The match is case-insensitive; the first matching list
// wins, transient checked before terminal.
func ClassifyError(err error) Category {
	if err == nil {
		return Unknown
	}
	msg := strings.ToLower(err.Error())
	for _, s := range transientSubstrings {
		if strings.Contains(msg, s) {
			return Transient
		}
	}
	for _, s := range terminalSubstrings {
		if strings.Contains(msg, s) {
			return Terminal
		}
	}
	return Unknown
}

// Family names the event family an event_type string belongs to, matched
// by substring against the provider's event type naming (e.g.
// "campaign_status_updated" -> FamilyCampaign, "piece.delivered" ->
// FamilyDirectMailPiece).
type Family string

const (
	FamilyCampaign       Family = "campaign"
	FamilyLead           Family = "lead"
	FamilyMessage        Family = "message"
	FamilyDirectMailPiece Family = "direct_mail_piece"
	FamilyUnknown        Family = "unknown"
)

// ClassifyFamily inspects an event_type string for the family-defining
// substring. Piece events are checked first since their dotted
// "piece.<verb>" names would otherwise also match nothing else; lead
// before campaign since "campaign_lead_added" should project as a lead
// event, not a bare campaign update.
func ClassifyFamily(eventType string) Family {
	t := strings.ToLower(eventType)
	switch {
	case strings.Contains(t, "piece"):
		return FamilyDirectMailPiece
	case strings.Contains(t, "lead"):
		return FamilyLead
	case strings.Contains(t, "reply"), strings.Contains(t, "message"), strings.Contains(t, "sent"):
		return FamilyMessage
	case strings.Contains(t, "campaign"):
		return FamilyCampaign
	default:
		return FamilyUnknown
	}
}

// MessageDirectionFromEventType is re-exported via internal/normalize; kept
// here only as a doc pointer — projection calls normalize.MessageDirectionFromEventType directly.

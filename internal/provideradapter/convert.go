package provideradapter

import (
	"fmt"

	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// leadRecordsFromRaw tolerates the snake_case/camelCase split across
// provider payloads (§9 Design Notes).
func leadRecordsFromRaw(rows []map[string]any) []LeadRecord {
	out := make([]LeadRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, LeadRecord{
			ExternalID:  toString(firstOf(row, "id", "leadId", "lead_id")),
			Email:       jsonutil.GetString(row, "email", "email"),
			FirstName:   jsonutil.GetString(row, "first_name", "firstName"),
			LastName:    jsonutil.GetString(row, "last_name", "lastName"),
			CompanyName: jsonutil.GetString(row, "company_name", "companyName"),
			Title:       jsonutil.GetString(row, "title", "title"),
			Status:      jsonutil.GetString(row, "status", "status"),
			Raw:         row,
		})
	}
	return out
}

func messageRecordsFromRaw(rows []map[string]any) []MessageRecord {
	out := make([]MessageRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, MessageRecord{
			ExternalID: toString(firstOf(row, "id", "messageId", "message_id")),
			EventType:  jsonutil.GetString(row, "event_type", "eventType"),
			Subject:    jsonutil.GetString(row, "subject", "subject"),
			Body:       jsonutil.GetString(row, "body", "body"),
			Raw:        row,
		})
	}
	return out
}

func inboxRecordsFromRaw(rows []map[string]any) []InboxRecord {
	out := make([]InboxRecord, 0, len(rows))
	for _, row := range rows {
		warmup, _ := firstOf(row, "warmup_enabled", "warmupEnabled").(bool)
		out = append(out, InboxRecord{
			ExternalAccountID: toString(firstOf(row, "id", "accountId", "account_id")),
			Email:             jsonutil.GetString(row, "email", "email"),
			Status:            jsonutil.GetString(row, "status", "status"),
			WarmupEnabled:     warmup,
		})
	}
	return out
}

func analyticsFromRaw(row map[string]any) AnalyticsRecord {
	return AnalyticsRecord{
		Sent:    toInt(firstOf(row, "sent", "sent_count", "sentCount")),
		Opened:  toInt(firstOf(row, "opened", "open_count", "openCount")),
		Replied: toInt(firstOf(row, "replied", "reply_count", "replyCount")),
		Bounced: toInt(firstOf(row, "bounced", "bounce_count", "bounceCount")),
	}
}

func pieceRecordsFromRaw(rows []map[string]any) []PieceRecord {
	out := make([]PieceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, PieceRecord{
			ExternalID: toString(firstOf(row, "id", "pieceId")),
			Status:     jsonutil.GetString(row, "status", "status"),
			Raw:        row,
		})
	}
	return out
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

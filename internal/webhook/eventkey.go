package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// EventKey computes the deterministic dedup key for a parsed payload
// (§4.6 step 2). Preferred: provider-supplied event_id/id. Otherwise a
// provider-specific composite. Fallback: SHA-256 of the raw body.
func EventKey(provider string, payload map[string]any, rawBody []byte) string {
	if id := jsonutil.GetString(payload, "event_id", "eventId"); id != "" {
		return id
	}
	if id := jsonutil.GetString(payload, "id", "id"); id != "" {
		return id
	}

	if provider == "lob" {
		resourceID := ""
		if resource, ok := payload["resource"].(map[string]any); ok {
			resourceID = jsonutil.GetString(resource, "id", "id")
		}
		eventType := jsonutil.GetString(payload, "type", "type")
		dateCreated := jsonutil.GetString(payload, "date_created", "dateCreated")
		if resourceID != "" {
			return fmt.Sprintf("%s:%s:%s:%s", provider, resourceID, eventType, dateCreated)
		}
	}

	sum := sha256.Sum256(rawBody)
	return hex.EncodeToString(sum[:])
}

// lobRequiredFields are the fields a Lob-style payload must carry for
// schema validation to pass (§4.6 step 4).
var lobRequiredFields = []string{"id", "type", "date_created"}

// ValidateLobSchema checks the required top-level fields plus
// resource.id, and that the payload declares a supported schema version.
// Returns ("", true) on success, or a dead-letter reason and false.
func ValidateLobSchema(payload map[string]any, supportedVersions []string) (reason string, ok bool) {
	missing := make([]string, 0)
	for _, f := range lobRequiredFields {
		if jsonutil.GetString(payload, f, "") == "" {
			missing = append(missing, f)
		}
	}
	if resource, hasResource := payload["resource"].(map[string]any); !hasResource || jsonutil.GetString(resource, "id", "id") == "" {
		missing = append(missing, "resource.id")
	}
	if len(missing) > 0 {
		return "schema_invalid:" + joinComma(missing), false
	}

	if len(supportedVersions) > 0 {
		version := jsonutil.GetString(payload, "schema_version", "schemaVersion")
		if version != "" && !contains(supportedVersions, version) {
			return "version_unsupported:" + version, false
		}
	}
	return "", true
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += it
	}
	return out
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}

package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/eventstore"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/pkg/logger"
	"github.com/ignite/outreach-gateway/internal/projection"
)

// ScopeResolver resolves tenant scope from the tenant-scoping hints a
// payload carries (campaign_external_id, piece_external_id), joining
// against local rows best-effort (§4.6 step 3).
type ScopeResolver interface {
	ResolveScope(ctx context.Context, providerSlug string, payload map[string]any) (orgID, companyID string, ok bool)
}

// Gateway is the per-provider webhook ingestion entry point.
type Gateway struct {
	store   eventstore.Store
	engine  *projection.Engine
	scopes  ScopeResolver
	metrics *observability.Registry

	lobSchemaVersions []string
}

func NewGateway(store eventstore.Store, engine *projection.Engine, scopes ScopeResolver, metrics *observability.Registry, lobSchemaVersions []string) *Gateway {
	return &Gateway{store: store, engine: engine, scopes: scopes, metrics: metrics, lobSchemaVersions: lobSchemaVersions}
}

// Result is the outcome of a single Ingest call, shaped for the HTTP
// layer to render without knowing gateway internals.
type Result struct {
	HTTPStatus int
	Body       map[string]any
}

// Ingest runs the full trust -> parse -> key -> store -> project pipeline
// for one provider's webhook request. verify is called with the raw body
// already read; providerSlug names which provider this request belongs
// to (used for event-key composition and dead-letter bookkeeping).
func (g *Gateway) Ingest(ctx context.Context, r *http.Request, providerSlug string, verify func(rawBody []byte) VerifyResult) Result {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		rawBody = nil
	}

	g.metrics.Incr("webhook.received", map[string]string{"provider": providerSlug}, 1)

	vr := verify(rawBody)
	if !vr.Accepted {
		g.metrics.Incr("webhook.signature_rejected", map[string]string{"provider": providerSlug, "reason": vr.Reason}, 1)
		logger.Event("webhook.rejected", map[string]any{"provider": providerSlug, "reason": vr.Reason})
		return Result{HTTPStatus: vr.HTTPStatus, Body: map[string]any{"type": "webhook_auth_failed", "reason": vr.Reason}}
	}
	if vr.Reason != "" {
		// permissive_audit accept with a recorded verification problem.
		g.metrics.Incr("webhook.signature.audit_failed", map[string]string{"provider": providerSlug, "reason": vr.Reason}, 1)
	}

	payload, malformed := parsePayload(rawBody)
	schemaReason := ""
	if providerSlug == "lob" && !malformed {
		if reason, ok := ValidateLobSchema(payload, g.lobSchemaVersions); !ok {
			schemaReason = reason
		}
	}

	eventKey := EventKey(providerSlug, payload, rawBody)
	eventType := stringField(payload, "type", stringField(payload, "event", ""))

	orgID, companyID, scopeOK := "", "", false
	if g.scopes != nil {
		orgID, companyID, scopeOK = g.scopes.ResolveScope(ctx, providerSlug, payload)
	}

	ingestionRecord := map[string]any{
		"trust_mode":          string(vr.Mode),
		"verification_reason": vr.Reason,
		"received_at":         time.Now().UTC().Format(time.RFC3339),
		"request_id":          uuid.New().String(),
	}
	payload["_ingestion"] = ingestionRecord
	if schemaReason != "" {
		payload["_schema_validation"] = map[string]any{"status": schemaReason}
	}

	status := domain.EventAccepted
	if vr.Synchronous {
		status = domain.EventProcessed
	}

	event := &domain.WebhookEvent{
		ProviderSlug: providerSlug,
		EventKey:     eventKey,
		EventType:    eventType,
		Status:       status,
		Payload:      payload,
	}
	if scopeOK {
		event.OrgID = &orgID
		event.CompanyID = &companyID
	}

	_, err = g.store.Insert(ctx, event)
	if errors.Is(err, eventstore.ErrDuplicate) {
		g.metrics.Incr("eventstore.duplicate_ignored", map[string]string{"provider": providerSlug}, 1)
		return Result{HTTPStatus: http.StatusOK, Body: map[string]any{"status": "duplicate_ignored"}}
	}
	if err != nil {
		return Result{HTTPStatus: http.StatusInternalServerError, Body: map[string]any{"type": "internal_error", "message": err.Error()}}
	}

	reason := ""
	switch {
	case malformed:
		reason = "malformed_payload"
	case schemaReason != "":
		reason = schemaReason
	case !scopeOK:
		reason = "projection_unresolved"
	}

	if reason != "" {
		g.deadLetter(ctx, providerSlug, eventKey, reason, false, fmt.Errorf(reason))
		g.metrics.Incr("projection.dead_letter", map[string]string{"provider": providerSlug, "reason": reason}, 1)
		return Result{HTTPStatus: http.StatusOK, Body: map[string]any{"status": "dead_letter_recorded", "reason": reason}}
	}

	if vr.Synchronous {
		g.metrics.Incr("projection.attempted", map[string]string{"provider": providerSlug}, 1)
		if err := g.engine.Apply(ctx, orgID, companyID, providerSlug, event); err != nil {
			cat := projection.ClassifyError(err)
			g.deadLetter(ctx, providerSlug, eventKey, "projection_failure", cat.Retryable(), err)
			g.metrics.Incr("projection.failed", map[string]string{"provider": providerSlug}, 1)
			g.metrics.Incr("projection.dead_letter", map[string]string{"provider": providerSlug, "reason": "projection_failure"}, 1)
			return Result{HTTPStatus: http.StatusOK, Body: map[string]any{"status": "dead_letter_recorded", "reason": "projection_failure"}}
		}
		now := time.Now().UTC()
		processed := domain.EventProcessed
		_ = g.store.UpdateByKey(ctx, providerSlug, eventKey, eventstore.UpdateFields{Status: &processed, ProcessedAt: &now})
		return Result{HTTPStatus: http.StatusOK, Body: map[string]any{"status": "processed"}}
	}

	// Unsigned-origin path: schedule projection asynchronously and return
	// immediately (§5 concurrency model — background task scheduler).
	go g.projectAsync(providerSlug, eventKey, orgID, companyID, event)
	return Result{HTTPStatus: http.StatusOK, Body: map[string]any{"status": "accepted"}}
}

func (g *Gateway) projectAsync(providerSlug, eventKey, orgID, companyID string, event *domain.WebhookEvent) {
	ctx := context.Background()
	g.metrics.Incr("projection.attempted", map[string]string{"provider": providerSlug}, 1)
	if err := g.engine.Apply(ctx, orgID, companyID, providerSlug, event); err != nil {
		cat := projection.ClassifyError(err)
		g.deadLetter(ctx, providerSlug, eventKey, "projection_failure", cat.Retryable(), err)
		g.metrics.Incr("projection.failed", map[string]string{"provider": providerSlug}, 1)
		g.metrics.Incr("projection.dead_letter", map[string]string{"provider": providerSlug, "reason": "projection_failure"}, 1)
		return
	}
	now := time.Now().UTC()
	processed := domain.EventProcessed
	_ = g.store.UpdateByKey(ctx, providerSlug, eventKey, eventstore.UpdateFields{Status: &processed, ProcessedAt: &now})
}

func (g *Gateway) deadLetter(ctx context.Context, providerSlug, eventKey, reason string, retryable bool, cause error) {
	status := domain.EventDeadLetter
	errMsg := ""
	if cause != nil {
		errMsg = cause.Error()
	}
	payload := map[string]any{
		"reason":      reason,
		"retryable":   retryable,
		"error":       errMsg,
		"recorded_at": time.Now().UTC().Format(time.RFC3339),
	}
	existing, err := g.store.Get(ctx, providerSlug, eventKey)
	if err == nil && existing != nil {
		existing.Payload["_dead_letter"] = payload
		_ = g.store.UpdateByKey(ctx, providerSlug, eventKey, eventstore.UpdateFields{
			Status:    &status,
			Payload:   existing.Payload,
			LastError: &errMsg,
		})
		return
	}
	_ = g.store.UpdateByKey(ctx, providerSlug, eventKey, eventstore.UpdateFields{Status: &status, LastError: &errMsg})
}

// parsePayload parses the raw body as JSON; malformed bodies are wrapped
// into a payload stub rather than rejected outright (§4.6 step 1).
func parsePayload(rawBody []byte) (map[string]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload == nil {
		sum := sha256.Sum256(rawBody)
		return map[string]any{
			"_malformed":  true,
			"_raw_sha256": hex.EncodeToString(sum[:]),
		}, true
	}
	return payload, false
}

func stringField(m map[string]any, key, def string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

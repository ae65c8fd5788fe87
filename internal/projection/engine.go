package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/normalize"
	"github.com/ignite/outreach-gateway/internal/pkg/archive"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// ErrUnresolved is raised by the direct-mail-piece family when the tenant
// scope cannot be determined for a piece the local tables have never seen
// (§4.7 — "otherwise refuse").
var ErrUnresolved = errors.New("projection_unresolved: tenant scope could not be resolved")

// Repos bundles the repository dependencies the engine needs. All of them
// are already org-scoped data access contracts (internal/repository).
type Repos struct {
	Campaigns repository.CampaignRepository
	Leads     repository.LeadRepository
	Messages  repository.MessageRepository
	Pieces    repository.PieceRepository
}

// Engine applies event-store rows onto the domain tables.
type Engine struct {
	repos   Repos
	archive *archive.Store // nil disables archival; oversized payloads stay inline
}

func NewEngine(repos Repos) *Engine {
	return &Engine{repos: repos}
}

// WithArchive enables S3 archival of direct-mail-piece payloads that
// exceed the inline-storage threshold. Optional — a nil *archive.Store
// (the default) keeps every payload inline regardless of size.
func (e *Engine) WithArchive(store *archive.Store) *Engine {
	e.archive = store
	return e
}

// Apply projects a single event onto the domain tables per §4.7. orgID and
// companyID must already be resolved (the webhook gateway's best-effort
// join, or the caller's own scope for reconciliation/replay).
func (e *Engine) Apply(ctx context.Context, orgID, companyID, providerSlug string, event *domain.WebhookEvent) error {
	family := ClassifyFamily(event.EventType)
	switch family {
	case FamilyCampaign:
		return e.applyCampaign(ctx, orgID, companyID, providerSlug, event.Payload)
	case FamilyLead:
		return e.applyLead(ctx, orgID, companyID, providerSlug, event.Payload)
	case FamilyMessage:
		return e.applyMessage(ctx, orgID, companyID, providerSlug, event.EventType, event.Payload)
	case FamilyDirectMailPiece:
		return e.applyPiece(ctx, orgID, companyID, providerSlug, event.EventType, event.Payload)
	default:
		return fmt.Errorf("projection: unrecognized event family for event_type %q", event.EventType)
	}
}

func externalCampaignID(payload map[string]any) string {
	return jsonutil.GetString(payload, "campaign_id", "campaignId")
}

func (e *Engine) resolveCampaign(ctx context.Context, orgID, providerSlug string, payload map[string]any) (*domain.Campaign, error) {
	extID := externalCampaignID(payload)
	if extID == "" {
		return nil, fmt.Errorf("projection: missing campaign_id in payload")
	}
	return e.repos.Campaigns.GetByExternalID(ctx, orgID, providerSlug, extID)
}

func (e *Engine) applyCampaign(ctx context.Context, orgID, companyID, providerSlug string, payload map[string]any) error {
	campaign, err := e.resolveCampaign(ctx, orgID, providerSlug, payload)
	if err != nil {
		return err
	}

	status := campaign.Status
	if raw := jsonutil.GetString(payload, "status", "status"); raw != "" {
		status = normalize.CampaignStatus(raw)
	}
	return e.repos.Campaigns.UpdateStatusAndPayload(ctx, orgID, campaign.ID, status, payload)
}

func (e *Engine) applyLead(ctx context.Context, orgID, companyID, providerSlug string, payload map[string]any) error {
	campaign, err := e.resolveCampaign(ctx, orgID, providerSlug, payload)
	if err != nil {
		return err
	}
	externalLeadID := jsonutil.GetString(payload, "lead_id", "leadId")
	if externalLeadID == "" {
		return fmt.Errorf("projection: missing lead_id in payload")
	}

	status := normalize.LeadStatus(jsonutil.GetString(payload, "status", "status"))
	existing, err := e.repos.Leads.GetByExternalID(ctx, orgID, campaign.ID, providerSlug, externalLeadID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing == nil {
		lead := &domain.CampaignLead{
			OrgID:             orgID,
			CompanyID:         companyID,
			CompanyCampaignID: campaign.ID,
			ProviderSlug:      providerSlug,
			ExternalLeadID:    externalLeadID,
			Email:             jsonutil.GetString(payload, "email", "email"),
			FirstName:         jsonutil.GetString(payload, "first_name", "firstName"),
			LastName:          jsonutil.GetString(payload, "last_name", "lastName"),
			Status:            status,
			RawPayload:        payload,
		}
		_, err := e.repos.Leads.Create(ctx, lead)
		return err
	}

	existing.Status = status
	existing.RawPayload = payload
	if v := jsonutil.GetString(payload, "email", "email"); v != "" {
		existing.Email = v
	}
	return e.repos.Leads.Update(ctx, orgID, existing.ID, existing)
}

func (e *Engine) applyMessage(ctx context.Context, orgID, companyID, providerSlug, eventType string, payload map[string]any) error {
	campaign, err := e.resolveCampaign(ctx, orgID, providerSlug, payload)
	if err != nil {
		return err
	}
	externalMessageID := jsonutil.GetString(payload, "message_id", "messageId")
	if externalMessageID == "" {
		return fmt.Errorf("projection: missing message_id in payload")
	}

	direction := normalize.MessageDirectionFromEventType(eventType)

	var seq *int
	if v, ok := jsonutil.GetAny(payload, "sequence_step_number", "sequenceStepNumber"); ok {
		if f, ok := v.(float64); ok && f >= 1 {
			n := int(f)
			seq = &n
		}
	}

	var sentAt *time.Time
	if raw := jsonutil.GetString(payload, "sent_at", "sentAt"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			sentAt = &t
		}
	}

	existing, err := e.repos.Messages.GetByExternalID(ctx, orgID, campaign.ID, providerSlug, externalMessageID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing == nil {
		msg := &domain.CampaignMessage{
			OrgID:             orgID,
			CompanyID:         companyID,
			CompanyCampaignID: campaign.ID,
			ProviderSlug:      providerSlug,
			ExternalMessageID: externalMessageID,
			Direction:         direction,
			SequenceStepNumber: seq,
			Subject:           jsonutil.GetString(payload, "subject", "subject"),
			Body:              jsonutil.GetString(payload, "body", "body"),
			SentAt:            sentAt,
			RawPayload:        payload,
		}
		_, err := e.repos.Messages.Create(ctx, msg)
		return err
	}

	existing.Direction = direction
	existing.RawPayload = payload
	if seq != nil {
		existing.SequenceStepNumber = seq
	}
	if sentAt != nil {
		existing.SentAt = sentAt
	}
	return e.repos.Messages.Update(ctx, orgID, existing.ID, existing)
}

func (e *Engine) applyPiece(ctx context.Context, orgID, companyID, providerSlug, eventType string, payload map[string]any) error {
	if orgID == "" || companyID == "" {
		return ErrUnresolved
	}
	status, ok := normalize.PieceStatusFromEventType(eventType)
	if !ok {
		return fmt.Errorf("projection: unrecognized piece event_type %q", eventType)
	}

	externalPieceID := jsonutil.GetString(payload, "piece_id", "pieceId")
	if externalPieceID == "" {
		if resource, isMap := payload["resource"].(map[string]any); isMap {
			externalPieceID = jsonutil.GetString(resource, "id", "id")
		}
	}
	if externalPieceID == "" {
		return fmt.Errorf("projection: missing piece identifier in payload")
	}

	existing, err := e.repos.Pieces.GetByExternalID(ctx, orgID, providerSlug, externalPieceID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	storedPayload, archiveKey, err := e.maybeArchive(ctx, orgID, externalPieceID, payload)
	if err != nil {
		return err
	}

	if existing == nil {
		piece := &domain.DirectMailPiece{
			OrgID:           orgID,
			CompanyID:       companyID,
			ProviderSlug:    providerSlug,
			ExternalPieceID: externalPieceID,
			PieceType:       piecetypeFromPayload(payload),
			Status:          status,
			RawPayload:      storedPayload,
			ArchiveS3Key:    archiveKey,
		}
		_, err := e.repos.Pieces.Create(ctx, piece)
		return err
	}
	existing.Status = status
	existing.RawPayload = storedPayload
	existing.ArchiveS3Key = archiveKey
	return e.repos.Pieces.Update(ctx, orgID, existing.ID, existing)
}

// maybeArchive ships payload to S3 when it exceeds the inline threshold,
// returning an empty RawPayload plus the archive key in that case. With no
// archive store configured (or a payload under the threshold), payload is
// returned unchanged and archiveKey is empty.
func (e *Engine) maybeArchive(ctx context.Context, orgID, externalPieceID string, payload map[string]any) (map[string]any, string, error) {
	if e.archive == nil || !archive.ShouldArchive(payload) {
		return payload, "", nil
	}
	key, err := e.archive.Archive(ctx, orgID, externalPieceID, payload)
	if err != nil {
		return nil, "", fmt.Errorf("projection: archive oversized piece payload: %w", err)
	}
	return map[string]any{}, key, nil
}

// piecetypeFromPayload extracts a piece type from the raw payload,
// defaulting to postcard (Lob's most common piece) when absent — the
// webhook carries no piece-type field of its own on most event shapes.
func piecetypeFromPayload(payload map[string]any) domain.PieceType {
	switch jsonutil.GetString(payload, "piece_type", "pieceType") {
	case string(domain.PieceTypeLetter):
		return domain.PieceTypeLetter
	case string(domain.PieceTypeSelfMailer):
		return domain.PieceTypeSelfMailer
	case string(domain.PieceTypeCheck):
		return domain.PieceTypeCheck
	default:
		return domain.PieceTypePostcard
	}
}

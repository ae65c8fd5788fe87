package repository

import (
	"context"

	"github.com/ignite/outreach-gateway/internal/domain"
)

// CampaignListFilter controls pagination and filtering for campaign listing.
type CampaignListFilter struct {
	CompanyID    string
	ProviderSlug string
	Status       string
	Limit        int
	Offset       int
}

// CampaignRepository is the data access contract for campaigns. Every
// method is scoped by orgID; CompanyID in filters/updates is validated by
// the caller (identity.Resolver), not re-derived here.
type CampaignRepository interface {
	Get(ctx context.Context, orgID, id string) (*domain.Campaign, error)

	// GetByExternalID resolves a campaign by its provider identity, the
	// lookup the projection engine and reconciliation runner use. Returns
	// ErrNotFound if no row exists.
	GetByExternalID(ctx context.Context, orgID, providerSlug, externalCampaignID string) (*domain.Campaign, error)

	List(ctx context.Context, orgID string, f CampaignListFilter) ([]domain.Campaign, int, error)

	Create(ctx context.Context, c *domain.Campaign) (string, error)

	// UpdateStatusAndPayload applies a normalized status (if non-empty) and
	// replaces raw_payload with the latest provider view. Used by both the
	// projection engine (from a webhook) and reconciliation (from a poll).
	UpdateStatusAndPayload(ctx context.Context, orgID, id string, status domain.CampaignStatus, rawPayload map[string]any) error

	// UpdateMessageSyncStatus records the outcome of the most recent
	// reconciliation message-sync attempt for this campaign.
	UpdateMessageSyncStatus(ctx context.Context, orgID, id string, status domain.MessageSyncStatus, lastErr string) error
}

// LeadListFilter controls pagination and filtering for lead listing.
type LeadListFilter struct {
	CompanyCampaignID string
	Status            string
	Limit             int
	Offset            int
}

// LeadRepository is the data access contract for campaign leads.
type LeadRepository interface {
	GetByExternalID(ctx context.Context, orgID, companyCampaignID, providerSlug, externalLeadID string) (*domain.CampaignLead, error)
	List(ctx context.Context, orgID string, f LeadListFilter) ([]domain.CampaignLead, int, error)
	Create(ctx context.Context, l *domain.CampaignLead) (string, error)
	Update(ctx context.Context, orgID, id string, l *domain.CampaignLead) error
	// BulkCreate inserts every lead in one round trip, for reconciliation
	// passes that discover many new leads on a single provider page. Every
	// lead must already carry an ID (callers generate it up front since a
	// bulk insert has no per-row RETURNING id to report back).
	BulkCreate(ctx context.Context, leads []*domain.CampaignLead) error
}

// MessageRepository is the data access contract for campaign messages.
type MessageRepository interface {
	GetByExternalID(ctx context.Context, orgID, companyCampaignID, providerSlug, externalMessageID string) (*domain.CampaignMessage, error)
	Create(ctx context.Context, m *domain.CampaignMessage) (string, error)
	Update(ctx context.Context, orgID, id string, m *domain.CampaignMessage) error
}

// PieceRepository is the data access contract for direct-mail pieces.
type PieceRepository interface {
	GetByExternalID(ctx context.Context, orgID, providerSlug, externalPieceID string) (*domain.DirectMailPiece, error)
	Create(ctx context.Context, p *domain.DirectMailPiece) (string, error)
	Update(ctx context.Context, orgID, id string, p *domain.DirectMailPiece) error
}

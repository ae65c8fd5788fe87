package provideradapter

import "context"

// CampaignRecord is the provider's raw view of a campaign. Status and Name
// are best-effort extractions tolerating both snake_case and camelCase
// provider fields (see internal/pkg/jsonutil); Raw is always the full
// decoded payload for downstream normalization.
type CampaignRecord struct {
	ExternalID string
	Name       string
	Status     string
	ClientID   string
	Raw        map[string]any
}

// LeadRecord is the provider's raw view of a lead.
type LeadRecord struct {
	ExternalID  string
	Email       string
	FirstName   string
	LastName    string
	CompanyName string
	Title       string
	Status      string
	Raw         map[string]any
}

// MessageRecord is the provider's raw view of a sent/received message.
type MessageRecord struct {
	ExternalID         string
	EventType          string
	SequenceStepNumber *int
	Subject            string
	Body               string
	Raw                map[string]any
}

// InboxRecord is a sending mailbox registered with an email-outreach
// provider.
type InboxRecord struct {
	ExternalAccountID string
	Email             string
	Status            string
	WarmupEnabled     bool
}

// AnalyticsRecord is a coarse per-campaign analytics snapshot.
type AnalyticsRecord struct {
	Sent     int
	Opened   int
	Replied  int
	Bounced  int
}

// PieceRecord is the provider's raw view of a direct-mail piece.
type PieceRecord struct {
	ExternalID string
	Status     string
	Raw        map[string]any
}

// OutreachAdapter is the capability surface shared by email- and
// LinkedIn-outreach providers (§4.3).
type OutreachAdapter interface {
	ListCampaigns(ctx context.Context, limit, offset int) ([]CampaignRecord, error)
	CreateCampaign(ctx context.Context, name string) (CampaignRecord, error)
	UpdateCampaignStatus(ctx context.Context, externalCampaignID, status string) error

	GetCampaignSequence(ctx context.Context, externalCampaignID string) (map[string]any, error)
	SaveCampaignSequence(ctx context.Context, externalCampaignID string, sequence map[string]any) error

	ListLeads(ctx context.Context, externalCampaignID string, limit, offset int) ([]LeadRecord, error)
	AddLeads(ctx context.Context, externalCampaignID string, leads []LeadRecord) error
	RemoveLead(ctx context.Context, externalCampaignID, externalLeadID string) error
	MutateLead(ctx context.Context, externalCampaignID, externalLeadID string, fields map[string]any) error

	ListMessages(ctx context.Context, externalCampaignID string, limit, offset int) ([]MessageRecord, error)
	GetCampaignAnalytics(ctx context.Context, externalCampaignID string) (AnalyticsRecord, error)

	ListInboxes(ctx context.Context) ([]InboxRecord, error)
	SetWarmup(ctx context.Context, externalAccountID string, enabled bool) error
}

// DirectMailAdapter is the capability surface for direct-mail providers
// (Lob-style).
type DirectMailAdapter interface {
	CreatePiece(ctx context.Context, pieceType string, fields map[string]any, idem IdempotencyMaterial) (PieceRecord, error)
	ListPieces(ctx context.Context, limit, offset int) ([]PieceRecord, error)
	GetPiece(ctx context.Context, externalPieceID string) (PieceRecord, error)
	CancelPiece(ctx context.Context, externalPieceID string) error
}

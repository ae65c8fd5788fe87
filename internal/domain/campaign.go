package domain

import "time"

// CampaignStatus is the canonical, provider-independent campaign lifecycle.
type CampaignStatus string

const (
	CampaignDrafted   CampaignStatus = "DRAFTED"
	CampaignActive    CampaignStatus = "ACTIVE"
	CampaignPaused    CampaignStatus = "PAUSED"
	CampaignStopped   CampaignStatus = "STOPPED"
	CampaignCompleted CampaignStatus = "COMPLETED"
)

// Campaign is a tenant-scoped, provider-backed outreach campaign.
// (provider_id, external_campaign_id) is unique among live rows.
type Campaign struct {
	ID                string             `json:"id" db:"id"`
	OrgID             string             `json:"org_id" db:"org_id"`
	CompanyID         string             `json:"company_id" db:"company_id"`
	ProviderSlug      string             `json:"provider_id" db:"provider_id"`
	ExternalCampaignID string            `json:"external_campaign_id" db:"external_campaign_id"`
	Name              string             `json:"name" db:"name"`
	Status            CampaignStatus     `json:"status" db:"status"`
	CreatedByUserID   string             `json:"created_by_user_id" db:"created_by_user_id"`
	RawPayload        map[string]any     `json:"raw_payload" db:"raw_payload"`
	MessageSyncStatus *MessageSyncStatus `json:"message_sync_status,omitempty" db:"message_sync_status"`
	LastMessageSyncError *string         `json:"last_message_sync_error,omitempty" db:"last_message_sync_error"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time         `json:"deleted_at,omitempty" db:"deleted_at"`
}

// LeadStatus is the canonical, provider-independent lead lifecycle.
type LeadStatus string

const (
	LeadActive        LeadStatus = "active"
	LeadPaused        LeadStatus = "paused"
	LeadUnsubscribed  LeadStatus = "unsubscribed"
	LeadReplied       LeadStatus = "replied"
	LeadBounced       LeadStatus = "bounced"
	LeadPending       LeadStatus = "pending"
	LeadContacted     LeadStatus = "contacted"
	LeadConnected     LeadStatus = "connected"
	LeadNotInterested LeadStatus = "not_interested"
	LeadUnknown       LeadStatus = "unknown"
)

// CampaignLead is unique per (campaign, provider, external_lead_id).
type CampaignLead struct {
	ID                string         `json:"id" db:"id"`
	OrgID             string         `json:"org_id" db:"org_id"`
	CompanyID         string         `json:"company_id" db:"company_id"`
	CompanyCampaignID string         `json:"company_campaign_id" db:"company_campaign_id"`
	ProviderSlug      string         `json:"provider_id" db:"provider_id"`
	ExternalLeadID    string         `json:"external_lead_id" db:"external_lead_id"`
	Email             string         `json:"email" db:"email"`
	FirstName         string         `json:"first_name" db:"first_name"`
	LastName          string         `json:"last_name" db:"last_name"`
	CompanyName       string         `json:"company_name" db:"company_name"`
	Title             string         `json:"title" db:"title"`
	Status            LeadStatus     `json:"status" db:"status"`
	RawPayload        map[string]any `json:"raw_payload" db:"raw_payload"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// MessageDirection is the canonical, provider-independent message direction.
type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
	MessageUnknownDirection MessageDirection = "unknown"
)

// CampaignMessage is unique per (campaign, provider, external_message_id).
type CampaignMessage struct {
	ID                    string           `json:"id" db:"id"`
	OrgID                 string           `json:"org_id" db:"org_id"`
	CompanyID             string           `json:"company_id" db:"company_id"`
	CompanyCampaignID     string           `json:"company_campaign_id" db:"company_campaign_id"`
	CompanyCampaignLeadID *string          `json:"company_campaign_lead_id,omitempty" db:"company_campaign_lead_id"`
	ProviderSlug          string           `json:"provider_id" db:"provider_id"`
	ExternalMessageID     string           `json:"external_message_id" db:"external_message_id"`
	Direction             MessageDirection `json:"direction" db:"direction"`
	SequenceStepNumber    *int             `json:"sequence_step_number,omitempty" db:"sequence_step_number"`
	Subject               string           `json:"subject" db:"subject"`
	Body                  string           `json:"body" db:"body"`
	SentAt                *time.Time       `json:"sent_at,omitempty" db:"sent_at"`
	RawPayload            map[string]any   `json:"raw_payload" db:"raw_payload"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the campaign is in a final lifecycle state.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignStopped || c.Status == CampaignCompleted
}

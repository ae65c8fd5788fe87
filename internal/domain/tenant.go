package domain

import "time"

// Capability is a coarse feature area a tenant can be entitled to.
type Capability string

const (
	CapabilityEmailOutreach    Capability = "email_outreach"
	CapabilityLinkedInOutreach Capability = "linkedin_outreach"
	CapabilityDirectMail       Capability = "direct_mail"
)

// Provider slugs. Each provider fulfils exactly one Capability.
const (
	ProviderSmartlead  = "smartlead"
	ProviderEmailBison = "emailbison"
	ProviderHeyReach   = "heyreach"
	ProviderLob        = "lob"
)

// ProviderCapability returns the capability a known provider slug fulfils.
// Unknown slugs return an empty Capability; callers must treat that as
// "provider not recognized", distinct from "not implemented for capability".
func ProviderCapability(providerSlug string) Capability {
	switch providerSlug {
	case ProviderSmartlead, ProviderEmailBison:
		return CapabilityEmailOutreach
	case ProviderHeyReach:
		return CapabilityLinkedInOutreach
	case ProviderLob:
		return CapabilityDirectMail
	default:
		return ""
	}
}

// Organization owns every other tenant-scoped entity. ProviderConfigs is
// the single source of tenant credentials; never cache credentials across
// requests (see concurrency model).
type Organization struct {
	ID              string                    `json:"id" db:"id"`
	Slug            string                    `json:"slug" db:"slug"`
	ProviderConfigs map[string]ProviderConfig `json:"provider_configs" db:"provider_configs"`
	CreatedAt       time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time                `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProviderConfig holds the tenant credentials for one provider.
type ProviderConfig struct {
	APIKey      string `json:"api_key"`
	InstanceURL string `json:"instance_url,omitempty"`
	// ClientID is used by Smartlead-style providers that scope campaigns to
	// a client sub-account. For EmailBison/HeyReach it instead identifies
	// the OAuth2 client-credentials client, paired with ClientSecret/TokenURL.
	ClientID string `json:"client_id,omitempty"`
	// ClientSecret and TokenURL are set only for providers that authenticate
	// via OAuth2 client-credentials (EmailBison, HeyReach) rather than a
	// bare bearer API key. Leaving either empty means APIKey is used as-is.
	ClientSecret string `json:"client_secret,omitempty"`
	TokenURL     string `json:"token_url,omitempty"`
}

// HasCredentials reports whether enough is configured to authenticate: a
// static API key, or an OAuth2 client-credentials pair.
func (c ProviderConfig) HasCredentials() bool {
	return c.APIKey != "" || (c.ClientSecret != "" && c.TokenURL != "")
}

// CompanyStatus enumerates company lifecycle states.
type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanySuspended CompanyStatus = "suspended"
)

// Company belongs to exactly one Organization.
type Company struct {
	ID        string        `json:"id" db:"id"`
	OrgID     string        `json:"org_id" db:"org_id"`
	Status    CompanyStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time    `json:"deleted_at,omitempty" db:"deleted_at"`
}

// EntitlementStatus enumerates the connection state of a provider wiring.
type EntitlementStatus string

const (
	EntitlementEntitled    EntitlementStatus = "entitled"
	EntitlementConnected   EntitlementStatus = "connected"
	EntitlementDisconnected EntitlementStatus = "disconnected"
)

// MessageSyncMode controls whether reconciliation pulls messages from a
// provider or relies solely on webhooks.
type MessageSyncMode string

const (
	MessageSyncWebhookOnly  MessageSyncMode = "webhook_only"
	MessageSyncPullBestEffort MessageSyncMode = "pull_best_effort"
)

// MessageSyncStatus records the outcome of the most recent message sync
// attempt for a campaign during reconciliation.
type MessageSyncStatus string

const (
	MessageSyncSkippedWebhookOnly MessageSyncStatus = "skipped_webhook_only"
	MessageSyncSuccess            MessageSyncStatus = "success"
	MessageSyncPartialError       MessageSyncStatus = "partial_error"
)

// Entitlement wires one Company to one Provider for one Capability. At most
// one entitlement may exist per (company, capability); provider choice for
// a capability is decided here, not per request.
type Entitlement struct {
	ID             string            `json:"id" db:"id"`
	OrgID          string            `json:"org_id" db:"org_id"`
	CompanyID      string            `json:"company_id" db:"company_id"`
	Capability     Capability        `json:"capability_id" db:"capability_id"`
	ProviderSlug   string            `json:"provider_id" db:"provider_id"`
	Status         EntitlementStatus `json:"status" db:"status"`
	ProviderConfig ProviderConfig    `json:"provider_config" db:"provider_config"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty" db:"deleted_at"`
}

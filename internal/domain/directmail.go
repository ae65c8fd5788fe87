package domain

import "time"

// PieceType enumerates the kinds of direct-mail pieces a provider can send.
type PieceType string

const (
	PieceTypePostcard   PieceType = "postcard"
	PieceTypeLetter     PieceType = "letter"
	PieceTypeSelfMailer PieceType = "self_mailer"
	PieceTypeCheck      PieceType = "check"
)

// PieceStatus is the canonical lifecycle of a direct-mail piece.
type PieceStatus string

const (
	PieceQueued        PieceStatus = "queued"
	PieceProcessing    PieceStatus = "processing"
	PieceReadyForMail  PieceStatus = "ready_for_mail"
	PieceInTransit     PieceStatus = "in_transit"
	PieceDelivered     PieceStatus = "delivered"
	PieceReturned      PieceStatus = "returned"
	PieceCanceled      PieceStatus = "canceled"
	PieceFailed        PieceStatus = "failed"
	PieceUnknown       PieceStatus = "unknown"
)

// DirectMailPiece is a single physical mail item tracked for one tenant.
type DirectMailPiece struct {
	ID             string         `json:"id" db:"id"`
	OrgID          string         `json:"org_id" db:"org_id"`
	CompanyID      string         `json:"company_id" db:"company_id"`
	ProviderSlug   string         `json:"provider_id" db:"provider_id"`
	ExternalPieceID string        `json:"external_piece_id" db:"external_piece_id"`
	PieceType      PieceType      `json:"piece_type" db:"piece_type"`
	Status         PieceStatus    `json:"status" db:"status"`
	SendDate       *time.Time     `json:"send_date,omitempty" db:"send_date"`
	Metadata       map[string]any `json:"metadata" db:"metadata"`
	RawPayload     map[string]any `json:"raw_payload" db:"raw_payload"`
	// ArchiveS3Key points at an externally-archived copy of RawPayload when
	// the provider payload exceeds the inline-storage threshold (e.g. Lob
	// thumbnail/PDF URLs embedded in the webhook body). Empty when the
	// payload was stored inline.
	ArchiveS3Key string     `json:"archive_s3_key,omitempty" db:"archive_s3_key"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Inbox is a sending mailbox/account registered with an email-outreach
// provider.
type Inbox struct {
	ID               string    `json:"id" db:"id"`
	OrgID            string    `json:"org_id" db:"org_id"`
	CompanyID        string    `json:"company_id" db:"company_id"`
	ProviderSlug     string    `json:"provider_id" db:"provider_id"`
	ExternalAccountID string   `json:"external_account_id" db:"external_account_id"`
	Email            string    `json:"email" db:"email"`
	Status           string    `json:"status" db:"status"`
	WarmupEnabled    bool      `json:"warmup_enabled" db:"warmup_enabled"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

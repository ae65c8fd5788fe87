package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// MessageRepo implements repository.MessageRepository against PostgreSQL.
type MessageRepo struct{ db *sql.DB }

// NewMessageRepo creates a Postgres-backed campaign-message repository.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageColumns = `id, org_id, company_id, company_campaign_id, company_campaign_lead_id,
	provider_id, external_message_id, direction, sequence_step_number, subject, body,
	sent_at, raw_payload, created_at, updated_at`

func (r *MessageRepo) scan(row *sql.Row) (*domain.CampaignMessage, error) {
	m := &domain.CampaignMessage{}
	var rawPayload []byte
	var leadID sql.NullString
	var seq sql.NullInt64
	var sentAt sql.NullTime
	err := row.Scan(
		&m.ID, &m.OrgID, &m.CompanyID, &m.CompanyCampaignID, &leadID,
		&m.ProviderSlug, &m.ExternalMessageID, &m.Direction, &seq, &m.Subject, &m.Body,
		&sentAt, &rawPayload, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	if leadID.Valid {
		m.CompanyCampaignLeadID = &leadID.String
	}
	if seq.Valid {
		n := int(seq.Int64)
		m.SequenceStepNumber = &n
	}
	if sentAt.Valid {
		m.SentAt = &sentAt.Time
	}
	if m.RawPayload, err = jsonutil.Decode(rawPayload); err != nil {
		return nil, fmt.Errorf("decode message payload: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) GetByExternalID(ctx context.Context, orgID, companyCampaignID, providerSlug, externalMessageID string) (*domain.CampaignMessage, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM company_campaign_messages
		WHERE org_id = $1 AND company_campaign_id = $2 AND provider_id = $3
		  AND external_message_id = $4
	`, orgID, companyCampaignID, providerSlug, externalMessageID)
	return r.scan(row)
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.CampaignMessage) (string, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	rawPayload, err := jsonutil.Encode(m.RawPayload)
	if err != nil {
		return "", fmt.Errorf("encode message payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO company_campaign_messages
			(id, org_id, company_id, company_campaign_id, company_campaign_lead_id,
			 provider_id, external_message_id, direction, sequence_step_number, subject,
			 body, sent_at, raw_payload, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now())
	`, m.ID, m.OrgID, m.CompanyID, m.CompanyCampaignID, m.CompanyCampaignLeadID,
		m.ProviderSlug, m.ExternalMessageID, m.Direction, m.SequenceStepNumber, m.Subject,
		m.Body, m.SentAt, rawPayload)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}
	return m.ID, nil
}

func (r *MessageRepo) Update(ctx context.Context, orgID, id string, m *domain.CampaignMessage) error {
	rawPayload, err := jsonutil.Encode(m.RawPayload)
	if err != nil {
		return fmt.Errorf("encode message payload: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE company_campaign_messages
		SET direction = $1, sequence_step_number = $2, subject = $3, body = $4,
		    sent_at = $5, raw_payload = $6, updated_at = now()
		WHERE id = $7 AND org_id = $8
	`, m.Direction, m.SequenceStepNumber, m.Subject, m.Body, m.SentAt, rawPayload, id, orgID)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return affectedOrNotFound(res)
}

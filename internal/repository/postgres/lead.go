package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
	"github.com/ignite/outreach-gateway/internal/repository"
	"github.com/lib/pq"
)

// LeadRepo implements repository.LeadRepository against PostgreSQL.
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo creates a Postgres-backed campaign-lead repository.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

const leadColumns = `id, org_id, company_id, company_campaign_id, provider_id,
	external_lead_id, email, first_name, last_name, company_name, title,
	status, raw_payload, created_at, updated_at`

func (r *LeadRepo) scan(row *sql.Row) (*domain.CampaignLead, error) {
	l := &domain.CampaignLead{}
	var rawPayload []byte
	err := row.Scan(
		&l.ID, &l.OrgID, &l.CompanyID, &l.CompanyCampaignID, &l.ProviderSlug,
		&l.ExternalLeadID, &l.Email, &l.FirstName, &l.LastName, &l.CompanyName,
		&l.Title, &l.Status, &rawPayload, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	if l.RawPayload, err = jsonutil.Decode(rawPayload); err != nil {
		return nil, fmt.Errorf("decode lead payload: %w", err)
	}
	return l, nil
}

func (r *LeadRepo) GetByExternalID(ctx context.Context, orgID, companyCampaignID, providerSlug, externalLeadID string) (*domain.CampaignLead, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+leadColumns+`
		FROM company_campaign_leads
		WHERE org_id = $1 AND company_campaign_id = $2 AND provider_id = $3
		  AND external_lead_id = $4 AND deleted_at IS NULL
	`, orgID, companyCampaignID, providerSlug, externalLeadID)
	return r.scan(row)
}

func (r *LeadRepo) List(ctx context.Context, orgID string, f repository.LeadListFilter) ([]domain.CampaignLead, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	where := `WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}
	idx := 2
	if f.CompanyCampaignID != "" {
		where += fmt.Sprintf(" AND company_campaign_id = $%d", idx)
		args = append(args, f.CompanyCampaignID)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM company_campaign_leads `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	q := fmt.Sprintf(`SELECT `+leadColumns+` FROM company_campaign_leads %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	qArgs := append(append([]interface{}{}, args...), limit, f.Offset)
	rows, err := r.db.QueryContext(ctx, q, qArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()
	var out []domain.CampaignLead
	for rows.Next() {
		var rawPayload []byte
		l := domain.CampaignLead{}
		if err := rows.Scan(&l.ID, &l.OrgID, &l.CompanyID, &l.CompanyCampaignID, &l.ProviderSlug,
			&l.ExternalLeadID, &l.Email, &l.FirstName, &l.LastName, &l.CompanyName,
			&l.Title, &l.Status, &rawPayload, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan lead row: %w", err)
		}
		l.RawPayload, _ = jsonutil.Decode(rawPayload)
		out = append(out, l)
	}
	return out, total, nil
}

func (r *LeadRepo) Create(ctx context.Context, l *domain.CampaignLead) (string, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	rawPayload, err := jsonutil.Encode(l.RawPayload)
	if err != nil {
		return "", fmt.Errorf("encode lead payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO company_campaign_leads
			(id, org_id, company_id, company_campaign_id, provider_id, external_lead_id,
			 email, first_name, last_name, company_name, title, status, raw_payload, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now())
	`, l.ID, l.OrgID, l.CompanyID, l.CompanyCampaignID, l.ProviderSlug, l.ExternalLeadID,
		l.Email, l.FirstName, l.LastName, l.CompanyName, l.Title, l.Status, rawPayload)
	if err != nil {
		return "", fmt.Errorf("create lead: %w", err)
	}
	return l.ID, nil
}

// BulkCreate inserts every lead in a single round trip via pq.CopyIn, for
// large provider pages discovered during a reconciliation pass. COPY
// bypasses per-row RETURNING, so IDs are generated client-side per row
// before the copy, same as Create does for a single lead.
func (r *LeadRepo) BulkCreate(ctx context.Context, leads []*domain.CampaignLead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bulk create leads: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("company_campaign_leads",
		"id", "org_id", "company_id", "company_campaign_id", "provider_id",
		"external_lead_id", "email", "first_name", "last_name", "company_name",
		"title", "status", "raw_payload",
	))
	if err != nil {
		return fmt.Errorf("bulk create leads: prepare copy: %w", err)
	}

	for _, l := range leads {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		rawPayload, err := jsonutil.Encode(l.RawPayload)
		if err != nil {
			return fmt.Errorf("bulk create leads: encode payload for %s: %w", l.ExternalLeadID, err)
		}
		if _, err := stmt.ExecContext(ctx, l.ID, l.OrgID, l.CompanyID, l.CompanyCampaignID, l.ProviderSlug,
			l.ExternalLeadID, l.Email, l.FirstName, l.LastName, l.CompanyName, l.Title, l.Status, rawPayload); err != nil {
			return fmt.Errorf("bulk create leads: copy row %s: %w", l.ExternalLeadID, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("bulk create leads: flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("bulk create leads: close copy: %w", err)
	}
	return tx.Commit()
}

func (r *LeadRepo) Update(ctx context.Context, orgID, id string, l *domain.CampaignLead) error {
	rawPayload, err := jsonutil.Encode(l.RawPayload)
	if err != nil {
		return fmt.Errorf("encode lead payload: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE company_campaign_leads
		SET email = $1, first_name = $2, last_name = $3, company_name = $4,
		    title = $5, status = $6, raw_payload = $7, updated_at = now()
		WHERE id = $8 AND org_id = $9 AND deleted_at IS NULL
	`, l.Email, l.FirstName, l.LastName, l.CompanyName, l.Title, l.Status, rawPayload, id, orgID)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return affectedOrNotFound(res)
}

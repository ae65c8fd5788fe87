// Package postgres implements the repository package's interfaces against
// PostgreSQL using database/sql and lib/pq, with dynamic SET-clause and
// scoped-query conventions consistent across every repo in the package.
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

// CampaignRepo implements repository.CampaignRepository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) scanOne(row *sql.Row) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var rawPayload []byte
	var syncStatus, syncErr sql.NullString
	err := row.Scan(
		&c.ID, &c.OrgID, &c.CompanyID, &c.ProviderSlug, &c.ExternalCampaignID,
		&c.Name, &c.Status, &c.CreatedByUserID, &rawPayload,
		&syncStatus, &syncErr, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	if c.RawPayload, err = jsonutil.Decode(rawPayload); err != nil {
		return nil, fmt.Errorf("decode campaign payload: %w", err)
	}
	if syncStatus.Valid {
		st := domain.MessageSyncStatus(syncStatus.String)
		c.MessageSyncStatus = &st
	}
	if syncErr.Valid {
		c.LastMessageSyncError = &syncErr.String
	}
	return c, nil
}

const campaignColumns = `id, org_id, company_id, provider_id, external_campaign_id,
	name, status, created_by_user_id, raw_payload, message_sync_status,
	last_message_sync_error, created_at, updated_at`

func (r *CampaignRepo) Get(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM company_campaigns
		WHERE id = $1 AND org_id = $2 AND deleted_at IS NULL
	`, id, orgID)
	return r.scanOne(row)
}

func (r *CampaignRepo) GetByExternalID(ctx context.Context, orgID, providerSlug, externalCampaignID string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM company_campaigns
		WHERE org_id = $1 AND provider_id = $2 AND external_campaign_id = $3 AND deleted_at IS NULL
	`, orgID, providerSlug, externalCampaignID)
	return r.scanOne(row)
}

func (r *CampaignRepo) List(ctx context.Context, orgID string, f repository.CampaignListFilter) ([]domain.Campaign, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := `WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}
	idx := 2
	if f.CompanyID != "" {
		where += fmt.Sprintf(" AND company_id = $%d", idx)
		args = append(args, f.CompanyID)
		idx++
	}
	if f.ProviderSlug != "" {
		where += fmt.Sprintf(" AND provider_id = $%d", idx)
		args = append(args, f.ProviderSlug)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM company_campaigns `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `SELECT ` + campaignColumns + ` FROM company_campaigns ` + where
	qArgs := append(append([]interface{}{}, args...), limit, f.Offset)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)

	rows, err := r.db.QueryContext(ctx, q, qArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		var rawPayload []byte
		var syncStatus, syncErr sql.NullString
		c := domain.Campaign{}
		if err := rows.Scan(
			&c.ID, &c.OrgID, &c.CompanyID, &c.ProviderSlug, &c.ExternalCampaignID,
			&c.Name, &c.Status, &c.CreatedByUserID, &rawPayload,
			&syncStatus, &syncErr, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan campaign row: %w", err)
		}
		c.RawPayload, _ = jsonutil.Decode(rawPayload)
		if syncStatus.Valid {
			st := domain.MessageSyncStatus(syncStatus.String)
			c.MessageSyncStatus = &st
		}
		out = append(out, c)
	}
	return out, total, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	rawPayload, err := jsonutil.Encode(c.RawPayload)
	if err != nil {
		return "", fmt.Errorf("encode campaign payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO company_campaigns
			(id, org_id, company_id, provider_id, external_campaign_id, name, status,
			 created_by_user_id, raw_payload, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
	`, c.ID, c.OrgID, c.CompanyID, c.ProviderSlug, c.ExternalCampaignID, c.Name,
		c.Status, c.CreatedByUserID, rawPayload)
	if err != nil {
		return "", fmt.Errorf("create campaign: %w", err)
	}
	return c.ID, nil
}

func (r *CampaignRepo) UpdateStatusAndPayload(ctx context.Context, orgID, id string, status domain.CampaignStatus, rawPayload map[string]any) error {
	payload, err := jsonutil.Encode(rawPayload)
	if err != nil {
		return fmt.Errorf("encode campaign payload: %w", err)
	}
	var res sql.Result
	if status != "" {
		res, err = r.db.ExecContext(ctx, `
			UPDATE company_campaigns
			SET status = $1, raw_payload = $2, updated_at = now()
			WHERE id = $3 AND org_id = $4 AND deleted_at IS NULL
		`, status, payload, id, orgID)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE company_campaigns
			SET raw_payload = $1, updated_at = now()
			WHERE id = $2 AND org_id = $3 AND deleted_at IS NULL
		`, payload, id, orgID)
	}
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return affectedOrNotFound(res)
}

func (r *CampaignRepo) UpdateMessageSyncStatus(ctx context.Context, orgID, id string, status domain.MessageSyncStatus, lastErr string) error {
	var lastErrArg interface{}
	if lastErr != "" {
		lastErrArg = lastErr
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE company_campaigns
		SET message_sync_status = $1, last_message_sync_error = $2, updated_at = now()
		WHERE id = $3 AND org_id = $4 AND deleted_at IS NULL
	`, status, lastErrArg, id, orgID)
	if err != nil {
		return fmt.Errorf("update message sync status: %w", err)
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

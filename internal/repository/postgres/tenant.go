package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// OrganizationRepo implements repository.OrganizationRepository.
type OrganizationRepo struct{ db *sql.DB }

func NewOrganizationRepo(db *sql.DB) *OrganizationRepo { return &OrganizationRepo{db: db} }

func (r *OrganizationRepo) Get(ctx context.Context, id string) (*domain.Organization, error) {
	var o domain.Organization
	var configs []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, slug, provider_configs, created_at, updated_at
		FROM organizations
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&o.ID, &o.Slug, &configs, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	raw, err := jsonutil.Decode(configs)
	if err != nil {
		return nil, fmt.Errorf("decode provider configs: %w", err)
	}
	o.ProviderConfigs = map[string]domain.ProviderConfig{}
	for slug, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		o.ProviderConfigs[slug] = domain.ProviderConfig{
			APIKey:       jsonutil.GetString(m, "api_key", ""),
			InstanceURL:  jsonutil.GetString(m, "instance_url", ""),
			ClientID:     jsonutil.GetString(m, "client_id", ""),
			ClientSecret: jsonutil.GetString(m, "client_secret", ""),
			TokenURL:     jsonutil.GetString(m, "token_url", ""),
		}
	}
	return &o, nil
}

// EntitlementRepo implements repository.EntitlementRepository.
type EntitlementRepo struct{ db *sql.DB }

func NewEntitlementRepo(db *sql.DB) *EntitlementRepo { return &EntitlementRepo{db: db} }

const entitlementColumns = `id, org_id, company_id, capability_id, provider_id, status,
	provider_config, created_at, updated_at`

func (r *EntitlementRepo) scanOne(row *sql.Row) (*domain.Entitlement, error) {
	e := &domain.Entitlement{}
	var cfg []byte
	err := row.Scan(&e.ID, &e.OrgID, &e.CompanyID, &e.Capability, &e.ProviderSlug,
		&e.Status, &cfg, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan entitlement: %w", err)
	}
	e.ProviderConfig, err = decodeProviderConfig(cfg)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func decodeProviderConfig(raw []byte) (domain.ProviderConfig, error) {
	m, err := jsonutil.Decode(raw)
	if err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("decode provider config: %w", err)
	}
	return domain.ProviderConfig{
		APIKey:       jsonutil.GetString(m, "api_key", ""),
		InstanceURL:  jsonutil.GetString(m, "instance_url", ""),
		ClientID:     jsonutil.GetString(m, "client_id", ""),
		ClientSecret: jsonutil.GetString(m, "client_secret", ""),
		TokenURL:     jsonutil.GetString(m, "token_url", ""),
	}, nil
}

func (r *EntitlementRepo) Get(ctx context.Context, orgID, companyID string, capability domain.Capability) (*domain.Entitlement, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+entitlementColumns+`
		FROM entitlements
		WHERE org_id = $1 AND company_id = $2 AND capability_id = $3 AND deleted_at IS NULL
	`, orgID, companyID, capability)
	return r.scanOne(row)
}

func (r *EntitlementRepo) List(ctx context.Context, f repository.EntitlementListFilter) ([]domain.Entitlement, error) {
	where := `WHERE deleted_at IS NULL`
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		where += fmt.Sprintf(" AND %s = $%d", col, idx)
		args = append(args, val)
		idx++
	}
	if f.OrgID != "" {
		add("org_id", f.OrgID)
	}
	if f.CompanyID != "" {
		add("company_id", f.CompanyID)
	}
	if f.Capability != "" {
		add("capability_id", f.Capability)
	}
	if f.ProviderSlug != "" {
		add("provider_id", f.ProviderSlug)
	}
	if f.Status != "" {
		add("status", f.Status)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+entitlementColumns+` FROM entitlements `+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}
	defer rows.Close()

	var out []domain.Entitlement
	for rows.Next() {
		e := domain.Entitlement{}
		var cfg []byte
		if err := rows.Scan(&e.ID, &e.OrgID, &e.CompanyID, &e.Capability, &e.ProviderSlug,
			&e.Status, &cfg, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entitlement row: %w", err)
		}
		e.ProviderConfig, _ = decodeProviderConfig(cfg)
		out = append(out, e)
	}
	return out, nil
}

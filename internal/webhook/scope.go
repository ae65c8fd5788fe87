package webhook

import (
	"context"
	"database/sql"

	"github.com/ignite/outreach-gateway/internal/pkg/jsonutil"
)

// PostgresScopeResolver resolves (org_id, company_id) for an inbound
// webhook by joining its tenant-scoping hints against local rows (§4.6
// step 3). Unlike the rest of the data access layer this necessarily
// searches across all tenants — the whole point is discovering which
// tenant a payload belongs to before any scope is known.
type PostgresScopeResolver struct {
	db *sql.DB
}

func NewPostgresScopeResolver(db *sql.DB) *PostgresScopeResolver {
	return &PostgresScopeResolver{db: db}
}

func (s *PostgresScopeResolver) ResolveScope(ctx context.Context, providerSlug string, payload map[string]any) (orgID, companyID string, ok bool) {
	if campaignExtID := jsonutil.GetString(payload, "campaign_id", "campaignId"); campaignExtID != "" {
		row := s.db.QueryRowContext(ctx,
			`SELECT org_id, company_id FROM campaigns WHERE provider_id = $1 AND external_campaign_id = $2 AND deleted_at IS NULL`,
			providerSlug, campaignExtID)
		if err := row.Scan(&orgID, &companyID); err == nil {
			return orgID, companyID, true
		}
	}

	pieceExtID := jsonutil.GetString(payload, "piece_id", "pieceId")
	if pieceExtID == "" {
		if resource, isMap := payload["resource"].(map[string]any); isMap {
			pieceExtID = jsonutil.GetString(resource, "id", "id")
		}
	}
	if pieceExtID != "" {
		row := s.db.QueryRowContext(ctx,
			`SELECT org_id, company_id FROM direct_mail_pieces WHERE provider_id = $1 AND external_piece_id = $2 AND deleted_at IS NULL`,
			providerSlug, pieceExtID)
		if err := row.Scan(&orgID, &companyID); err == nil {
			return orgID, companyID, true
		}
	}

	return "", "", false
}

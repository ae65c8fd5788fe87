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

// PieceRepo implements repository.PieceRepository against PostgreSQL.
type PieceRepo struct{ db *sql.DB }

// NewPieceRepo creates a Postgres-backed direct-mail-piece repository.
func NewPieceRepo(db *sql.DB) *PieceRepo { return &PieceRepo{db: db} }

const pieceColumns = `id, org_id, company_id, provider_id, external_piece_id,
	piece_type, status, send_date, metadata, raw_payload, archive_s3_key,
	created_at, updated_at`

func (r *PieceRepo) scan(row *sql.Row) (*domain.DirectMailPiece, error) {
	p := &domain.DirectMailPiece{}
	var metadata, rawPayload []byte
	var sendDate sql.NullTime
	var archiveKey sql.NullString
	err := row.Scan(
		&p.ID, &p.OrgID, &p.CompanyID, &p.ProviderSlug, &p.ExternalPieceID,
		&p.PieceType, &p.Status, &sendDate, &metadata, &rawPayload, &archiveKey,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan piece: %w", err)
	}
	if sendDate.Valid {
		p.SendDate = &sendDate.Time
	}
	if archiveKey.Valid {
		p.ArchiveS3Key = archiveKey.String
	}
	if p.Metadata, err = jsonutil.Decode(metadata); err != nil {
		return nil, fmt.Errorf("decode piece metadata: %w", err)
	}
	if p.RawPayload, err = jsonutil.Decode(rawPayload); err != nil {
		return nil, fmt.Errorf("decode piece payload: %w", err)
	}
	return p, nil
}

func (r *PieceRepo) GetByExternalID(ctx context.Context, orgID, providerSlug, externalPieceID string) (*domain.DirectMailPiece, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+pieceColumns+`
		FROM direct_mail_pieces
		WHERE org_id = $1 AND provider_id = $2 AND external_piece_id = $3 AND deleted_at IS NULL
	`, orgID, providerSlug, externalPieceID)
	return r.scan(row)
}

func (r *PieceRepo) Create(ctx context.Context, p *domain.DirectMailPiece) (string, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	metadata, err := jsonutil.Encode(p.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode piece metadata: %w", err)
	}
	rawPayload, err := jsonutil.Encode(p.RawPayload)
	if err != nil {
		return "", fmt.Errorf("encode piece payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO direct_mail_pieces
			(id, org_id, company_id, provider_id, external_piece_id, piece_type, status,
			 send_date, metadata, raw_payload, archive_s3_key, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now())
	`, p.ID, p.OrgID, p.CompanyID, p.ProviderSlug, p.ExternalPieceID, p.PieceType, p.Status,
		p.SendDate, metadata, rawPayload, nullableString(p.ArchiveS3Key))
	if err != nil {
		return "", fmt.Errorf("create piece: %w", err)
	}
	return p.ID, nil
}

func (r *PieceRepo) Update(ctx context.Context, orgID, id string, p *domain.DirectMailPiece) error {
	rawPayload, err := jsonutil.Encode(p.RawPayload)
	if err != nil {
		return fmt.Errorf("encode piece payload: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE direct_mail_pieces
		SET status = $1, send_date = $2, raw_payload = $3, archive_s3_key = $4, updated_at = now()
		WHERE id = $5 AND org_id = $6 AND deleted_at IS NULL
	`, p.Status, p.SendDate, rawPayload, nullableString(p.ArchiveS3Key), id, orgID)
	if err != nil {
		return fmt.Errorf("update piece: %w", err)
	}
	return affectedOrNotFound(res)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

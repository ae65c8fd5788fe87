package service

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/normalize"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// PieceService implements the direct-mail Domain Write Services: create,
// list, cancel a mail piece.
type PieceService struct {
	providers *ProviderResolver
	pieces    repository.PieceRepository
	metrics   *observability.Registry
}

func NewPieceService(providers *ProviderResolver, pieces repository.PieceRepository, metrics *observability.Registry) *PieceService {
	return &PieceService{providers: providers, pieces: pieces, metrics: metrics}
}

// Create dispatches a new piece through the company's direct-mail provider
// and upserts the local row. idem carries the caller's idempotency material
// (header XOR query key); the adapter rejects supplying both.
func (s *PieceService) Create(ctx context.Context, orgID, companyID, pieceType string, fields map[string]any, idem provideradapter.IdempotencyMaterial) (*domain.DirectMailPiece, error) {
	adapter, ent, err := s.providers.ResolveDirectMail(ctx, orgID, companyID)
	if err != nil {
		return nil, err
	}

	record, err := adapter.CreatePiece(ctx, pieceType, fields, idem)
	if err != nil {
		s.metrics.Incr("piece.create.provider_error", map[string]string{"provider": ent.ProviderSlug}, 1)
		return nil, err
	}

	status, ok := normalize.PieceStatusFromEventType(record.Status)
	if !ok {
		status = domain.PieceQueued
	}
	piece := &domain.DirectMailPiece{
		OrgID: orgID, CompanyID: companyID, ProviderSlug: ent.ProviderSlug,
		ExternalPieceID: record.ExternalID, PieceType: domain.PieceType(pieceType),
		Status: status, RawPayload: record.Raw,
	}
	id, err := s.pieces.Create(ctx, piece)
	if err != nil {
		return nil, fmt.Errorf("persist piece: %w", err)
	}
	piece.ID = id
	s.metrics.Incr("piece.created", map[string]string{"provider": ent.ProviderSlug}, 1)
	return piece, nil
}

// Cancel cancels a piece through the provider and marks it locally.
func (s *PieceService) Cancel(ctx context.Context, orgID, companyID, pieceID string) error {
	piece, err := s.pieces.GetByExternalID(ctx, orgID, domain.ProviderLob, pieceID)
	if err != nil {
		return err
	}
	if piece.CompanyID != companyID {
		return repository.ErrScopeMismatch
	}

	adapter, ent, err := s.providers.ResolveDirectMail(ctx, orgID, companyID)
	if err != nil {
		return err
	}
	if err := adapter.CancelPiece(ctx, piece.ExternalPieceID); err != nil {
		s.metrics.Incr("piece.cancel.provider_error", map[string]string{"provider": ent.ProviderSlug}, 1)
		return err
	}
	piece.Status = domain.PieceCanceled
	if err := s.pieces.Update(ctx, orgID, piece.ID, piece); err != nil {
		return fmt.Errorf("persist canceled piece: %w", err)
	}
	s.metrics.Incr("piece.canceled", map[string]string{"provider": ent.ProviderSlug}, 1)
	return nil
}

// List lists pieces directly from the provider (live view, not the local
// cache) — used by admin tooling that wants the provider's current state.
func (s *PieceService) List(ctx context.Context, orgID, companyID string, limit, offset int) ([]provideradapter.PieceRecord, error) {
	adapter, _, err := s.providers.ResolveDirectMail(ctx, orgID, companyID)
	if err != nil {
		return nil, err
	}
	return adapter.ListPieces(ctx, limit, offset)
}

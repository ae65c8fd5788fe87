// Package memory implements the repository package's interfaces in-process,
// as lightweight test doubles. These are unit-test fixtures, not a
// deployable backend — callers needing durability use repository/postgres.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// CampaignRepo is an in-memory repository.CampaignRepository.
type CampaignRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.Campaign
}

func NewCampaignRepo() *CampaignRepo {
	return &CampaignRepo{rows: make(map[string]*domain.Campaign)}
}

func (r *CampaignRepo) Get(_ context.Context, orgID, id string) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.OrgID != orgID {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CampaignRepo) GetByExternalID(_ context.Context, orgID, providerSlug, externalCampaignID string) (*domain.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.OrgID == orgID && c.ProviderSlug == providerSlug && c.ExternalCampaignID == externalCampaignID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CampaignRepo) List(_ context.Context, orgID string, f repository.CampaignListFilter) ([]domain.Campaign, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Campaign
	for _, c := range r.rows {
		if c.OrgID != orgID {
			continue
		}
		if f.CompanyID != "" && c.CompanyID != f.CompanyID {
			continue
		}
		if f.ProviderSlug != "" && c.ProviderSlug != f.ProviderSlug {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		out = append(out, *c)
	}
	total := len(out)
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[f.Offset:min(f.Offset+f.Limit, len(out))]
	}
	return out, total, nil
}

func (r *CampaignRepo) Create(_ context.Context, c *domain.Campaign) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	r.rows[cp.ID] = &cp
	return cp.ID, nil
}

func (r *CampaignRepo) UpdateStatusAndPayload(_ context.Context, orgID, id string, status domain.CampaignStatus, rawPayload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.OrgID != orgID {
		return repository.ErrNotFound
	}
	if status != "" {
		c.Status = status
	}
	c.RawPayload = rawPayload
	return nil
}

func (r *CampaignRepo) UpdateMessageSyncStatus(_ context.Context, orgID, id string, status domain.MessageSyncStatus, lastErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.OrgID != orgID {
		return repository.ErrNotFound
	}
	c.MessageSyncStatus = &status
	if lastErr != "" {
		c.LastMessageSyncError = &lastErr
	}
	return nil
}

// LeadRepo is an in-memory repository.LeadRepository.
type LeadRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.CampaignLead
}

func NewLeadRepo() *LeadRepo { return &LeadRepo{rows: make(map[string]*domain.CampaignLead)} }

func (r *LeadRepo) GetByExternalID(_ context.Context, orgID, companyCampaignID, providerSlug, externalLeadID string) (*domain.CampaignLead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.OrgID == orgID && l.CompanyCampaignID == companyCampaignID && l.ProviderSlug == providerSlug && l.ExternalLeadID == externalLeadID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *LeadRepo) List(_ context.Context, orgID string, f repository.LeadListFilter) ([]domain.CampaignLead, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CampaignLead
	for _, l := range r.rows {
		if l.OrgID != orgID {
			continue
		}
		if f.CompanyCampaignID != "" && l.CompanyCampaignID != f.CompanyCampaignID {
			continue
		}
		if f.Status != "" && string(l.Status) != f.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (r *LeadRepo) Create(_ context.Context, l *domain.CampaignLead) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	cp := *l
	r.rows[cp.ID] = &cp
	return cp.ID, nil
}

// BulkCreate inserts every lead, matching the semantics of
// postgres.LeadRepo.BulkCreate closely enough for it to substitute in
// tests: each lead gets a generated ID if it doesn't already have one.
func (r *LeadRepo) BulkCreate(_ context.Context, leads []*domain.CampaignLead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range leads {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		cp := *l
		r.rows[cp.ID] = &cp
	}
	return nil
}

func (r *LeadRepo) Update(_ context.Context, orgID, id string, l *domain.CampaignLead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[id]
	if !ok || existing.OrgID != orgID {
		return repository.ErrNotFound
	}
	cp := *l
	cp.ID = id
	r.rows[id] = &cp
	return nil
}

// MessageRepo is an in-memory repository.MessageRepository.
type MessageRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.CampaignMessage
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{rows: make(map[string]*domain.CampaignMessage)}
}

func (r *MessageRepo) GetByExternalID(_ context.Context, orgID, companyCampaignID, providerSlug, externalMessageID string) (*domain.CampaignMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.OrgID == orgID && m.CompanyCampaignID == companyCampaignID && m.ProviderSlug == providerSlug && m.ExternalMessageID == externalMessageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MessageRepo) Create(_ context.Context, m *domain.CampaignMessage) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	cp := *m
	r.rows[cp.ID] = &cp
	return cp.ID, nil
}

func (r *MessageRepo) Update(_ context.Context, orgID, id string, m *domain.CampaignMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[id]
	if !ok || existing.OrgID != orgID {
		return repository.ErrNotFound
	}
	cp := *m
	cp.ID = id
	r.rows[id] = &cp
	return nil
}

// PieceRepo is an in-memory repository.PieceRepository.
type PieceRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.DirectMailPiece
}

func NewPieceRepo() *PieceRepo { return &PieceRepo{rows: make(map[string]*domain.DirectMailPiece)} }

func (r *PieceRepo) GetByExternalID(_ context.Context, orgID, providerSlug, externalPieceID string) (*domain.DirectMailPiece, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.OrgID == orgID && p.ProviderSlug == providerSlug && p.ExternalPieceID == externalPieceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PieceRepo) Create(_ context.Context, p *domain.DirectMailPiece) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	cp := *p
	r.rows[cp.ID] = &cp
	return cp.ID, nil
}

func (r *PieceRepo) Update(_ context.Context, orgID, id string, p *domain.DirectMailPiece) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rows[id]
	if !ok || existing.OrgID != orgID {
		return repository.ErrNotFound
	}
	cp := *p
	cp.ID = id
	r.rows[id] = &cp
	return nil
}

// OrganizationRepo is an in-memory repository.OrganizationRepository.
type OrganizationRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.Organization
}

func NewOrganizationRepo() *OrganizationRepo {
	return &OrganizationRepo{rows: make(map[string]*domain.Organization)}
}

func (r *OrganizationRepo) Put(o *domain.Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[o.ID] = o
}

func (r *OrganizationRepo) Get(_ context.Context, id string) (*domain.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// EntitlementRepo is an in-memory repository.EntitlementRepository.
type EntitlementRepo struct {
	mu   sync.Mutex
	rows []domain.Entitlement
}

func NewEntitlementRepo() *EntitlementRepo { return &EntitlementRepo{} }

func (r *EntitlementRepo) Put(e domain.Entitlement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, e)
}

func (r *EntitlementRepo) Get(_ context.Context, orgID, companyID string, capability domain.Capability) (*domain.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.rows {
		if e.OrgID == orgID && e.CompanyID == companyID && e.Capability == capability {
			cp := e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *EntitlementRepo) List(_ context.Context, f repository.EntitlementListFilter) ([]domain.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Entitlement
	for _, e := range r.rows {
		if f.OrgID != "" && e.OrgID != f.OrgID {
			continue
		}
		if f.CompanyID != "" && e.CompanyID != f.CompanyID {
			continue
		}
		if f.Capability != "" && e.Capability != f.Capability {
			continue
		}
		if f.ProviderSlug != "" && e.ProviderSlug != f.ProviderSlug {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package repository

import (
	"context"

	"github.com/ignite/outreach-gateway/internal/domain"
)

// OrganizationRepository is the data access contract for organizations.
type OrganizationRepository interface {
	Get(ctx context.Context, id string) (*domain.Organization, error)
}

// EntitlementListFilter filters entitlements for reconciliation sweeps and
// admin listing.
type EntitlementListFilter struct {
	OrgID      string
	CompanyID  string
	Capability domain.Capability
	ProviderSlug string
	Status     domain.EntitlementStatus
}

// EntitlementRepository is the data access contract for company-provider
// wiring. At most one entitlement exists per (company, capability); callers
// rely on that uniqueness rather than re-checking it.
type EntitlementRepository interface {
	Get(ctx context.Context, orgID, companyID string, capability domain.Capability) (*domain.Entitlement, error)
	List(ctx context.Context, f EntitlementListFilter) ([]domain.Entitlement, error)
}

package service

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/reconciliation"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// ProviderResolver loads the entitlement and tenant credentials for one
// (company, capability) pair — step 2-3 of every write service operation.
type ProviderResolver struct {
	Organizations repository.OrganizationRepository
	Entitlements  repository.EntitlementRepository
}

// ResolveOutreach loads the entitlement for an outreach capability and
// constructs the matching OutreachAdapter. Returns *ProviderNotImplementedError
// if the entitled provider has no outreach adapter, and ErrNoEntitlement if
// the company has none configured for the capability.
func (pr *ProviderResolver) ResolveOutreach(ctx context.Context, orgID, companyID string, capability domain.Capability) (provideradapter.OutreachAdapter, *domain.Entitlement, error) {
	ent, err := pr.Entitlements.Get(ctx, orgID, companyID, capability)
	if err == repository.ErrNotFound {
		return nil, nil, ErrNoEntitlement
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolve entitlement: %w", err)
	}
	if ent.Status != domain.EntitlementEntitled && ent.Status != domain.EntitlementConnected {
		return nil, nil, ErrNoEntitlement
	}

	org, err := pr.Organizations.Get(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("load organization: %w", err)
	}
	cfg, ok := org.ProviderConfigs[ent.ProviderSlug]
	if !ok || !cfg.HasCredentials() {
		return nil, nil, fmt.Errorf("service: organization %s has no credentials for provider %s", orgID, ent.ProviderSlug)
	}

	apiKey, err := provideradapter.ResolveBearerToken(ctx, cfg.APIKey, provideradapter.TokenCredentials{
		ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret, TokenURL: cfg.TokenURL,
	})
	if err != nil {
		return nil, ent, fmt.Errorf("mint oauth2 token for %s: %w", ent.ProviderSlug, err)
	}

	adapter, err := reconciliation.OutreachAdapterFor(ent.ProviderSlug, provideradapter.Credentials{
		APIKey: apiKey, InstanceURL: cfg.InstanceURL, ClientID: cfg.ClientID,
	})
	if err != nil {
		return nil, ent, &ProviderNotImplementedError{Capability: string(capability), Provider: ent.ProviderSlug}
	}
	return adapter, ent, nil
}

// ResolveDirectMail loads the entitlement for the direct-mail capability and
// constructs its DirectMailAdapter. Only Lob implements DirectMailAdapter
// today, so any other entitled provider is provider_not_implemented.
func (pr *ProviderResolver) ResolveDirectMail(ctx context.Context, orgID, companyID string) (provideradapter.DirectMailAdapter, *domain.Entitlement, error) {
	ent, err := pr.Entitlements.Get(ctx, orgID, companyID, domain.CapabilityDirectMail)
	if err == repository.ErrNotFound {
		return nil, nil, ErrNoEntitlement
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolve entitlement: %w", err)
	}
	if ent.Status != domain.EntitlementEntitled && ent.Status != domain.EntitlementConnected {
		return nil, nil, ErrNoEntitlement
	}
	if ent.ProviderSlug != domain.ProviderLob {
		return nil, ent, &ProviderNotImplementedError{Capability: string(domain.CapabilityDirectMail), Provider: ent.ProviderSlug}
	}

	org, err := pr.Organizations.Get(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("load organization: %w", err)
	}
	cfg, ok := org.ProviderConfigs[ent.ProviderSlug]
	if !ok || cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("service: organization %s has no credentials for provider %s", orgID, ent.ProviderSlug)
	}
	return provideradapter.NewLobAdapter(provideradapter.Credentials{
		APIKey: cfg.APIKey, InstanceURL: cfg.InstanceURL,
	}, nil), ent, nil
}

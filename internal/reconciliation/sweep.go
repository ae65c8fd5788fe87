package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/pkg/distlock"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// RunRequest is the sweep input, mirroring the optional scoping fields of
// the original reconciliation endpoint's request body: an absent
// ProviderSlug sweeps every outreach-capable provider, an absent OrgID or
// CompanyID sweeps every tenant.
type RunRequest struct {
	ProviderSlug string
	OrgID        string
	CompanyID    string
	DryRun       bool
	Limits       Limits
}

// RunResponse is the sweep output (§4.9 step 5).
type RunResponse struct {
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Providers  []ProviderStats `json:"providers"`
}

// ProviderStats is one provider's Stats tagged with its slug.
type ProviderStats struct {
	ProviderSlug string `json:"provider_slug"`
	Stats
}

// defaultSweepProviders is the provider set swept when the caller doesn't
// name one — every provider with an outreach reconciliation loop. Lob has
// no campaign/lead analogue and reconciles separately.
var defaultSweepProviders = []string{domain.ProviderSmartlead, domain.ProviderHeyReach, domain.ProviderEmailBison}

// Sweeper runs a full reconciliation pass across organizations,
// entitlements, and providers — the Go analogue of
// _run_reconciliation's loop over provider_slugs x entitlements.
type Sweeper struct {
	runner        *Runner
	organizations repository.OrganizationRepository
	entitlements  repository.EntitlementRepository
	heyreachMode  domain.MessageSyncMode

	// NewLock builds a distributed lock keyed on (org, provider), serializing
	// concurrent sweeps against the same tenant/provider pair. Nil disables
	// locking (single-process or test use).
	NewLock func(key string) distlock.DistLock
}

func NewSweeper(runner *Runner, organizations repository.OrganizationRepository, entitlements repository.EntitlementRepository, heyreachMode domain.MessageSyncMode) *Sweeper {
	if heyreachMode == "" {
		heyreachMode = domain.MessageSyncWebhookOnly
	}
	return &Sweeper{runner: runner, organizations: organizations, entitlements: entitlements, heyreachMode: heyreachMode}
}

func (s *Sweeper) Run(ctx context.Context, req RunRequest) RunResponse {
	started := time.Now().UTC()
	slugs := defaultSweepProviders
	if req.ProviderSlug != "" {
		slugs = []string{req.ProviderSlug}
	}

	resp := RunResponse{DryRun: req.DryRun, StartedAt: started}
	for _, slug := range slugs {
		resp.Providers = append(resp.Providers, s.runProvider(ctx, slug, req))
	}
	resp.FinishedAt = time.Now().UTC()
	return resp
}

func (s *Sweeper) runProvider(ctx context.Context, providerSlug string, req RunRequest) ProviderStats {
	out := ProviderStats{ProviderSlug: providerSlug, Stats: Stats{Errors: []string{}}}

	capability := domain.ProviderCapability(providerSlug)
	if capability == "" {
		out.Errors = append(out.Errors, fmt.Sprintf("provider not configured: %s", providerSlug))
		return out
	}

	entitlements, err := s.entitlements.List(ctx, repository.EntitlementListFilter{
		OrgID: req.OrgID, CompanyID: req.CompanyID, Capability: capability, ProviderSlug: providerSlug,
	})
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("list entitlements: %v", err))
		return out
	}

	messageSyncMode := domain.MessageSyncPullBestEffort
	if providerSlug == domain.ProviderHeyReach {
		messageSyncMode = s.heyreachMode
	}

	for _, ent := range entitlements {
		org, err := s.organizations.Get(ctx, ent.OrgID)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s:%s:%s: load organization failed: %v", providerSlug, ent.OrgID, ent.CompanyID, err))
			continue
		}
		cfg, ok := org.ProviderConfigs[providerSlug]
		if !ok || !cfg.HasCredentials() {
			out.Errors = append(out.Errors, fmt.Sprintf("%s:%s:%s: missing org api key", providerSlug, ent.OrgID, ent.CompanyID))
			continue
		}

		apiKey, err := provideradapter.ResolveBearerToken(ctx, cfg.APIKey, provideradapter.TokenCredentials{
			ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret, TokenURL: cfg.TokenURL,
		})
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s:%s:%s: mint oauth2 token: %v", providerSlug, ent.OrgID, ent.CompanyID, err))
			continue
		}

		adapter, err := OutreachAdapterFor(providerSlug, provideradapter.Credentials{
			APIKey: apiKey, InstanceURL: cfg.InstanceURL, ClientID: cfg.ClientID,
		})
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			continue
		}

		target := Target{
			OrgID:             ent.OrgID,
			CompanyID:         ent.CompanyID,
			ProviderSlug:      providerSlug,
			SmartleadClientID: ent.ProviderConfig.ClientID,
			MessageSyncMode:   messageSyncMode,
		}

		var lock distlock.DistLock
		if s.NewLock != nil {
			lock = s.NewLock(fmt.Sprintf("reconciliation:%s:%s", ent.OrgID, providerSlug))
			acquired, err := lock.Acquire(ctx)
			if err != nil {
				out.Errors = append(out.Errors, fmt.Sprintf("%s:%s:%s: lock acquire failed: %v", providerSlug, ent.OrgID, ent.CompanyID, err))
				continue
			}
			if !acquired {
				out.Errors = append(out.Errors, fmt.Sprintf("%s:%s:%s: reconciliation already running, skipped", providerSlug, ent.OrgID, ent.CompanyID))
				continue
			}
		}

		providerStats := s.runner.Run(ctx, target, adapter, req.Limits, req.DryRun)
		if lock != nil {
			lock.Release(ctx)
		}
		out.CompaniesScanned += providerStats.CompaniesScanned
		out.CampaignsScanned += providerStats.CampaignsScanned
		out.CampaignsCreated += providerStats.CampaignsCreated
		out.CampaignsUpdated += providerStats.CampaignsUpdated
		out.LeadsScanned += providerStats.LeadsScanned
		out.LeadsCreated += providerStats.LeadsCreated
		out.LeadsUpdated += providerStats.LeadsUpdated
		out.MessagesScanned += providerStats.MessagesScanned
		out.MessagesCreated += providerStats.MessagesCreated
		out.Errors = append(out.Errors, providerStats.Errors...)
	}

	return out
}

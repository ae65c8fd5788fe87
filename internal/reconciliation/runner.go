// Package reconciliation reuses the projection engine against provider
// polling APIs to repair divergence between provider state and the local
// tables (§4.9).
package reconciliation

import (
	"context"
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/normalize"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
	"github.com/ignite/outreach-gateway/internal/repository"
)

// Limits bounds how much of each provider collection a single
// reconciliation pass reads.
type Limits struct {
	CampaignLimit int
	LeadLimit     int
	MessageLimit  int
}

// Target names one (org, company, provider) triple to reconcile.
type Target struct {
	OrgID            string
	CompanyID        string
	ProviderSlug     string
	SmartleadClientID string // tenant-specific scoping hint for Smartlead, §4.9 step 1
	MessageSyncMode  domain.MessageSyncMode
}

// Stats is the per-provider result summary (§4.9 step 5).
type Stats struct {
	CompaniesScanned  int      `json:"companies_scanned"`
	CampaignsScanned  int      `json:"campaigns_scanned"`
	CampaignsCreated  int      `json:"campaigns_created"`
	CampaignsUpdated  int      `json:"campaigns_updated"`
	LeadsScanned      int      `json:"leads_scanned"`
	LeadsCreated      int      `json:"leads_created"`
	LeadsUpdated      int      `json:"leads_updated"`
	MessagesScanned   int      `json:"messages_scanned"`
	MessagesCreated   int      `json:"messages_created"`
	Errors            []string `json:"errors"`
}

// Repos bundles the repositories the runner upserts through.
type Repos struct {
	Campaigns repository.CampaignRepository
	Leads     repository.LeadRepository
	Messages  repository.MessageRepository
}

// Runner executes reconciliation passes.
type Runner struct {
	repos Repos
}

func NewRunner(repos Repos) *Runner {
	return &Runner{repos: repos}
}

// Run reconciles one (org, company, provider) target against its
// OutreachAdapter. dryRun short-circuits every write but still counts
// created/updated as if the write had happened (§8 scenario 6).
func (run *Runner) Run(ctx context.Context, target Target, adapter provideradapter.OutreachAdapter, limits Limits, dryRun bool) Stats {
	stats := Stats{CompaniesScanned: 1, Errors: []string{}}

	campaigns, err := adapter.ListCampaigns(ctx, limitOrDefault(limits.CampaignLimit, 100), 0)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("list_campaigns: %v", err))
		return stats
	}

	for _, c := range campaigns {
		if target.SmartleadClientID != "" && c.ClientID != "" && c.ClientID != target.SmartleadClientID {
			continue
		}
		stats.CampaignsScanned++

		normalizedStatus := normalize.CampaignStatus(c.Status)
		existing, err := run.repos.Campaigns.GetByExternalID(ctx, target.OrgID, target.ProviderSlug, c.ExternalID)
		switch {
		case err == repository.ErrNotFound:
			stats.CampaignsCreated++
			if !dryRun {
				_, createErr := run.repos.Campaigns.Create(ctx, &domain.Campaign{
					OrgID:              target.OrgID,
					CompanyID:          target.CompanyID,
					ProviderSlug:       target.ProviderSlug,
					ExternalCampaignID: c.ExternalID,
					Name:               c.Name,
					Status:             normalizedStatus,
					RawPayload:         c.Raw,
				})
				if createErr != nil {
					stats.Errors = append(stats.Errors, fmt.Sprintf("create_campaign %s: %v", c.ExternalID, createErr))
					continue
				}
				existing, _ = run.repos.Campaigns.GetByExternalID(ctx, target.OrgID, target.ProviderSlug, c.ExternalID)
			}
		case err != nil:
			stats.Errors = append(stats.Errors, fmt.Sprintf("get_campaign %s: %v", c.ExternalID, err))
			continue
		default:
			if existing.Name != c.Name || existing.Status != normalizedStatus {
				stats.CampaignsUpdated++
				if !dryRun {
					if updErr := run.repos.Campaigns.UpdateStatusAndPayload(ctx, target.OrgID, existing.ID, normalizedStatus, c.Raw); updErr != nil {
						stats.Errors = append(stats.Errors, fmt.Sprintf("update_campaign %s: %v", c.ExternalID, updErr))
						continue
					}
				}
			}
		}

		if dryRun && existing == nil {
			// No local row yet and we refused to create one: leads/messages
			// for this campaign have nothing to attach to in a dry run.
			continue
		}
		companyCampaignID := ""
		if existing != nil {
			companyCampaignID = existing.ID
		}

		run.reconcileLeads(ctx, target, c.ExternalID, companyCampaignID, adapter, limits, dryRun, &stats)

		switch target.MessageSyncMode {
		case domain.MessageSyncWebhookOnly:
			if !dryRun && existing != nil {
				_ = run.repos.Campaigns.UpdateMessageSyncStatus(ctx, target.OrgID, existing.ID, domain.MessageSyncSkippedWebhookOnly, "")
			}
		case domain.MessageSyncPullBestEffort:
			run.reconcileMessages(ctx, target, c.ExternalID, companyCampaignID, adapter, limits, dryRun, existing, &stats)
		}
	}

	return stats
}

func (run *Runner) reconcileLeads(ctx context.Context, target Target, externalCampaignID, companyCampaignID string, adapter provideradapter.OutreachAdapter, limits Limits, dryRun bool, stats *Stats) {
	leads, err := adapter.ListLeads(ctx, externalCampaignID, limitOrDefault(limits.LeadLimit, 200), 0)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("list_leads %s: %v", externalCampaignID, err))
		return
	}

	var newLeads []*domain.CampaignLead
	for _, l := range leads {
		stats.LeadsScanned++
		if companyCampaignID == "" {
			continue
		}
		status := normalize.LeadStatus(l.Status)
		existing, err := run.repos.Leads.GetByExternalID(ctx, target.OrgID, companyCampaignID, target.ProviderSlug, l.ExternalID)
		switch {
		case err == repository.ErrNotFound:
			stats.LeadsCreated++
			if !dryRun {
				newLeads = append(newLeads, &domain.CampaignLead{
					OrgID:             target.OrgID,
					CompanyID:         target.CompanyID,
					CompanyCampaignID: companyCampaignID,
					ProviderSlug:      target.ProviderSlug,
					ExternalLeadID:    l.ExternalID,
					Email:             l.Email,
					FirstName:         l.FirstName,
					LastName:          l.LastName,
					CompanyName:       l.CompanyName,
					Title:             l.Title,
					Status:            status,
					RawPayload:        l.Raw,
				})
			}
		case err != nil:
			stats.Errors = append(stats.Errors, fmt.Sprintf("get_lead %s: %v", l.ExternalID, err))
		default:
			if existing.Status != status || existing.Email != l.Email {
				stats.LeadsUpdated++
				if !dryRun {
					existing.Status = status
					existing.Email = l.Email
					existing.RawPayload = l.Raw
					if updErr := run.repos.Leads.Update(ctx, target.OrgID, existing.ID, existing); updErr != nil {
						stats.Errors = append(stats.Errors, fmt.Sprintf("update_lead %s: %v", l.ExternalID, updErr))
					}
				}
			}
		}
	}

	// Every newly-discovered lead on this page is inserted in one round
	// trip rather than one INSERT per lead — a provider page can carry
	// hundreds of leads never seen locally before.
	if len(newLeads) > 0 {
		if bulkErr := run.repos.Leads.BulkCreate(ctx, newLeads); bulkErr != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("bulk_create_leads campaign=%s: %v", externalCampaignID, bulkErr))
		}
	}
}

func (run *Runner) reconcileMessages(ctx context.Context, target Target, externalCampaignID, companyCampaignID string, adapter provideradapter.OutreachAdapter, limits Limits, dryRun bool, campaign *domain.Campaign, stats *Stats) {
	messages, err := adapter.ListMessages(ctx, externalCampaignID, limitOrDefault(limits.MessageLimit, 200), 0)
	syncStatus := domain.MessageSyncSuccess
	lastErr := ""
	if err != nil {
		syncStatus = domain.MessageSyncPartialError
		lastErr = err.Error()
		stats.Errors = append(stats.Errors, fmt.Sprintf("list_messages %s: %v", externalCampaignID, err))
	} else {
		for _, m := range messages {
			stats.MessagesScanned++
			if companyCampaignID == "" || dryRun {
				continue
			}
			direction := normalize.MessageDirectionFromEventType(m.EventType)
			existing, getErr := run.repos.Messages.GetByExternalID(ctx, target.OrgID, companyCampaignID, target.ProviderSlug, m.ExternalID)
			if getErr == repository.ErrNotFound {
				if _, createErr := run.repos.Messages.Create(ctx, &domain.CampaignMessage{
					OrgID:              target.OrgID,
					CompanyID:          target.CompanyID,
					CompanyCampaignID:  companyCampaignID,
					ProviderSlug:       target.ProviderSlug,
					ExternalMessageID:  m.ExternalID,
					Direction:          direction,
					SequenceStepNumber: m.SequenceStepNumber,
					Subject:            m.Subject,
					Body:               m.Body,
					RawPayload:         m.Raw,
				}); createErr != nil {
					syncStatus = domain.MessageSyncPartialError
					lastErr = createErr.Error()
					stats.Errors = append(stats.Errors, fmt.Sprintf("create_message %s: %v", m.ExternalID, createErr))
				} else {
					stats.MessagesCreated++
				}
			} else if getErr != nil {
				syncStatus = domain.MessageSyncPartialError
				lastErr = getErr.Error()
			} else {
				existing.RawPayload = m.Raw
				_ = run.repos.Messages.Update(ctx, target.OrgID, existing.ID, existing)
			}
		}
	}

	if !dryRun && campaign != nil {
		_ = run.repos.Campaigns.UpdateMessageSyncStatus(ctx, target.OrgID, campaign.ID, syncStatus, lastErr)
	}
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

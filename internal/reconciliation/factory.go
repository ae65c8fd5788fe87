package reconciliation

import (
	"fmt"

	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/provideradapter"
)

// OutreachAdapterFor builds the stateless OutreachAdapter for a provider
// slug from tenant credentials. Smartlead/EmailBison/HeyReach are the only
// providers with an email- or LinkedIn-outreach reconciliation loop; Lob
// participates in reconciliation through a separate direct-mail sweep that
// has no campaign/lead analogue.
func OutreachAdapterFor(providerSlug string, creds provideradapter.Credentials) (provideradapter.OutreachAdapter, error) {
	switch providerSlug {
	case domain.ProviderSmartlead:
		return provideradapter.NewSmartleadAdapter(creds, nil), nil
	case domain.ProviderEmailBison:
		return provideradapter.NewEmailBisonAdapter(creds, nil), nil
	case domain.ProviderHeyReach:
		return provideradapter.NewHeyReachAdapter(creds, nil), nil
	default:
		return nil, fmt.Errorf("reconciliation: provider %q has no outreach adapter", providerSlug)
	}
}

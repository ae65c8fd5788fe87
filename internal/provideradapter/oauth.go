package provideradapter

import (
	"context"

	"golang.org/x/oauth2/clientcredentials"
)

// TokenCredentials carries OAuth2 client-credentials configuration for
// providers (EmailBison, HeyReach) that authenticate with a minted bearer
// token instead of a long-lived API key.
type TokenCredentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// ResolveBearerToken mints an access token via OAuth2 client-credentials
// when tc carries both a ClientSecret and a TokenURL, returning apiKey
// unchanged for providers still authenticating with a bare API key. The
// minted token is never cached here — a fresh adapter is built per call
// from the organization row, same as every other credential (§5).
func ResolveBearerToken(ctx context.Context, apiKey string, tc TokenCredentials) (string, error) {
	if tc.ClientSecret == "" || tc.TokenURL == "" {
		return apiKey, nil
	}
	cfg := clientcredentials.Config{
		ClientID:     tc.ClientID,
		ClientSecret: tc.ClientSecret,
		TokenURL:     tc.TokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

package domain

import "testing"

func TestProviderConfigHasCredentials(t *testing.T) {
	cases := []struct {
		name string
		cfg  ProviderConfig
		want bool
	}{
		{"empty", ProviderConfig{}, false},
		{"bare api key", ProviderConfig{APIKey: "k"}, true},
		{"oauth2 pair", ProviderConfig{ClientSecret: "s", TokenURL: "https://auth.example.com/token"}, true},
		{"secret without token url", ProviderConfig{ClientSecret: "s"}, false},
		{"token url without secret", ProviderConfig{TokenURL: "https://auth.example.com/token"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.cfg.HasCredentials(); got != c.want {
				t.Errorf("HasCredentials() = %v, want %v", got, c.want)
			}
		})
	}
}

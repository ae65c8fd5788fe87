package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearGatewayEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "REDIS_URL", "LOB_WEBHOOK_SIGNATURE_MODE",
		"LOB_WEBHOOK_SIGNATURE_TOLERANCE_SECONDS", "LOB_WEBHOOK_SCHEMA_VERSIONS",
		"EMAILBISON_WEBHOOK_PATH_TOKEN", "EMAILBISON_WEBHOOK_ALLOWED_ORIGINS",
		"INTERNAL_SCHEDULER_SECRET", "HEYREACH_MESSAGE_SYNC_MODE",
		"WEBHOOK_TRUST_CONFIG_PATH", "SMARTLEAD_WEBHOOK_SECRET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadGatewayDefaults(t *testing.T) {
	clearGatewayEnv(t)
	t.Setenv("WEBHOOK_TRUST_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadGateway()
	require.NoError(t, err)
	assert.Equal(t, "enforce", cfg.LobSignatureMode)
	assert.Equal(t, 300, cfg.LobSignatureToleranceSecs)
	assert.Equal(t, "webhook_only", cfg.HeyReachMessageSyncMode)
	assert.Equal(t, 50, cfg.ReplayBatchSize)
	assert.Equal(t, 2.0, cfg.ReplayBackoffMultiplier)
	assert.Empty(t, cfg.PayloadArchiveBucket)
	assert.Equal(t, "us-east-1", cfg.PayloadArchiveRegion)
}

func TestLoadGatewayReadsWebhookSecretsPerProvider(t *testing.T) {
	clearGatewayEnv(t)
	t.Setenv("WEBHOOK_TRUST_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SMARTLEAD_WEBHOOK_SECRET", "sk-123")
	t.Setenv("LOB_WEBHOOK_SECRET", "lb-456")

	cfg, err := LoadGateway()
	require.NoError(t, err)
	assert.Equal(t, "sk-123", cfg.WebhookSecrets["smartlead"])
	assert.Equal(t, "lb-456", cfg.WebhookSecrets["lob"])
	assert.Empty(t, cfg.WebhookSecrets["heyreach"])
}

func TestLoadGatewayYAMLOverlayOverridesEnvDefaults(t *testing.T) {
	clearGatewayEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "webhook_trust.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lob_signature_mode: permissive_audit
lob_signature_tolerance_seconds: 600
emailbison_allowed_origins:
  - https://app.example.com
`), 0o644))
	t.Setenv("WEBHOOK_TRUST_CONFIG_PATH", path)

	cfg, err := LoadGateway()
	require.NoError(t, err)
	assert.Equal(t, "permissive_audit", cfg.LobSignatureMode)
	assert.Equal(t, 600, cfg.LobSignatureToleranceSecs)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.EmailBisonAllowedOrigins)
}

func TestLoadGatewayMissingOverlayFileIsNotAnError(t *testing.T) {
	clearGatewayEnv(t)
	t.Setenv("WEBHOOK_TRUST_CONFIG_PATH", filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	_, err := LoadGateway()
	assert.NoError(t, err)
}

func TestEnvListTrimsAndDropsEmptyEntries(t *testing.T) {
	t.Setenv("TEST_ENV_LIST", " a , b ,, c")
	assert.Equal(t, []string{"a", "b", "c"}, envList("TEST_ENV_LIST"))
}

func TestEnvIntFallsBackToDefaultOnUnparsable(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "not-a-number")
	assert.Equal(t, 42, envInt("TEST_ENV_INT", 42))
}

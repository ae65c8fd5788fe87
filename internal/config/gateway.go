package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GatewayConfig holds the outreach gateway's own configuration, read
// directly from the environment per §6. Unlike the legacy mailing
// platform's Config (YAML file with env overrides), the gateway is
// entirely environment-driven — there is no base file to merge against.
type GatewayConfig struct {
	DatabaseURL string
	RedisURL    string

	WebhookSecrets map[string]string // PROVIDER -> <PROVIDER>_WEBHOOK_SECRET

	LobSignatureMode          string // "enforce" or "permissive_audit"
	LobSignatureToleranceSecs int
	LobSchemaVersions         []string

	EmailBisonPathToken      string
	EmailBisonAllowedOrigins []string

	LobReplayWindowSeconds int

	SLOThresholds SLOThresholds

	InternalSchedulerSecret string

	ObservabilityExportEnabled bool
	ObservabilityExportToken   string

	HeyReachMessageSyncMode string // "live" or "webhook_only"

	ReplayQueueSize         int
	ReplayBatchSize         int
	ReplayMaxEventsPerRun   int
	ReplayBaseSleepMillis   int
	ReplayMaxSleepMillis    int
	ReplayBackoffMultiplier float64

	// PayloadArchiveBucket configures oversized direct-mail piece payload
	// archival to S3 (§4.13). Leaving it empty disables archival entirely —
	// every payload stays inline regardless of size.
	PayloadArchiveBucket string
	PayloadArchiveRegion string
}

// SLOThresholds holds the rate thresholds named in §4.10.
type SLOThresholds struct {
	SignatureRejectRate   float64
	DeadLetterRate        float64
	ProjectionFailureRate float64
	ReplayFailureRate     float64
	DuplicateIgnoreRate   float64
}

// LoadGateway reads GatewayConfig entirely from the environment, loading a
// .env file first (if present) the same way LoadFromEnv does for the
// legacy platform config.
func LoadGateway() (*GatewayConfig, error) {
	_ = godotenv.Load()

	cfg := &GatewayConfig{
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		RedisURL:                  os.Getenv("REDIS_URL"),
		WebhookSecrets:            make(map[string]string),
		LobSignatureMode:          envDefault("LOB_WEBHOOK_SIGNATURE_MODE", "enforce"),
		LobSignatureToleranceSecs: envInt("LOB_WEBHOOK_SIGNATURE_TOLERANCE_SECONDS", 300),
		LobSchemaVersions:         envList("LOB_WEBHOOK_SCHEMA_VERSIONS"),
		EmailBisonPathToken:       os.Getenv("EMAILBISON_WEBHOOK_PATH_TOKEN"),
		EmailBisonAllowedOrigins:  envList("EMAILBISON_WEBHOOK_ALLOWED_ORIGINS"),
		LobReplayWindowSeconds:    envInt("LOB_WEBHOOK_REPLAY_WINDOW_SECONDS", 300),
		InternalSchedulerSecret:   os.Getenv("INTERNAL_SCHEDULER_SECRET"),
		ObservabilityExportEnabled: envBool("OBSERVABILITY_EXPORT_ENABLED", false),
		ObservabilityExportToken:   os.Getenv("OBSERVABILITY_EXPORT_TOKEN"),
		HeyReachMessageSyncMode:    envDefault("HEYREACH_MESSAGE_SYNC_MODE", "webhook_only"),
		ReplayQueueSize:            envInt("REPLAY_QUEUE_SIZE", 10),
		ReplayBatchSize:            envInt("REPLAY_BATCH_SIZE", 50),
		ReplayMaxEventsPerRun:      envInt("REPLAY_MAX_EVENTS_PER_RUN", 1000),
		ReplayBaseSleepMillis:      envInt("REPLAY_BASE_SLEEP_MS", 250),
		ReplayMaxSleepMillis:       envInt("REPLAY_MAX_SLEEP_MS", 10000),
		ReplayBackoffMultiplier:    envFloat("REPLAY_BACKOFF_MULTIPLIER", 2.0),
		PayloadArchiveBucket:       os.Getenv("PAYLOAD_ARCHIVE_BUCKET"),
		PayloadArchiveRegion:       envDefault("PAYLOAD_ARCHIVE_REGION", "us-east-1"),
		SLOThresholds: SLOThresholds{
			SignatureRejectRate:   envFloat("LOB_SLO_SIGNATURE_REJECT_RATE_THRESHOLD", 0.05),
			DeadLetterRate:        envFloat("LOB_SLO_DEAD_LETTER_RATE_THRESHOLD", 0.02),
			ProjectionFailureRate: envFloat("LOB_SLO_PROJECTION_FAILURE_RATE_THRESHOLD", 0.02),
			ReplayFailureRate:     envFloat("LOB_SLO_REPLAY_FAILURE_RATE_THRESHOLD", 0.10),
			DuplicateIgnoreRate:   envFloat("LOB_SLO_DUPLICATE_IGNORE_RATE_THRESHOLD", 0.20),
		},
	}

	for _, provider := range []string{"SMARTLEAD", "EMAILBISON", "HEYREACH", "LOB"} {
		if v := os.Getenv(provider + "_WEBHOOK_SECRET"); v != "" {
			cfg.WebhookSecrets[strings.ToLower(provider)] = v
		}
	}

	overlayPath := envDefault("WEBHOOK_TRUST_CONFIG_PATH", "config/webhook_trust.yaml")
	if err := applyWebhookTrustOverlay(cfg, overlayPath); err != nil {
		return nil, err
	}

	return cfg, nil
}

// webhookTrustOverlay is an optional, version-controlled alternative to
// setting per-provider trust settings via environment variables — operators
// who prefer a checked-in file over a pile of env vars can use this
// instead. Present fields override whatever LoadGateway already read from
// the environment; absent fields are left alone.
type webhookTrustOverlay struct {
	LobSignatureMode          string   `yaml:"lob_signature_mode"`
	LobSignatureToleranceSecs int      `yaml:"lob_signature_tolerance_seconds"`
	LobSchemaVersions         []string `yaml:"lob_schema_versions"`
	EmailBisonAllowedOrigins  []string `yaml:"emailbison_allowed_origins"`
}

// applyWebhookTrustOverlay merges path's contents onto cfg if the file
// exists. A missing file is not an error — the overlay is optional.
func applyWebhookTrustOverlay(cfg *GatewayConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var overlay webhookTrustOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return err
	}

	if overlay.LobSignatureMode != "" {
		cfg.LobSignatureMode = overlay.LobSignatureMode
	}
	if overlay.LobSignatureToleranceSecs != 0 {
		cfg.LobSignatureToleranceSecs = overlay.LobSignatureToleranceSecs
	}
	if len(overlay.LobSchemaVersions) > 0 {
		cfg.LobSchemaVersions = overlay.LobSchemaVersions
	}
	if len(overlay.EmailBisonAllowedOrigins) > 0 {
		cfg.EmailBisonAllowedOrigins = overlay.EmailBisonAllowedOrigins
	}
	return nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

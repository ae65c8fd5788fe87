package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/outreach-gateway/internal/config"
	"github.com/ignite/outreach-gateway/internal/domain"
	"github.com/ignite/outreach-gateway/internal/eventstore"
	"github.com/ignite/outreach-gateway/internal/identity"
	"github.com/ignite/outreach-gateway/internal/observability"
	"github.com/ignite/outreach-gateway/internal/pkg/archive"
	"github.com/ignite/outreach-gateway/internal/pkg/distlock"
	"github.com/ignite/outreach-gateway/internal/pkg/logger"
	"github.com/ignite/outreach-gateway/internal/projection"
	"github.com/ignite/outreach-gateway/internal/reconciliation"
	"github.com/ignite/outreach-gateway/internal/replay"
	"github.com/ignite/outreach-gateway/internal/repository/postgres"
	"github.com/ignite/outreach-gateway/internal/service"
	"github.com/ignite/outreach-gateway/internal/webhook"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process,\n"+
			"  or use 'scripts/kill-port.sh %d' to kill it", port, addr, err, port, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Outreach Orchestration Gateway (cmd/server/main.go)       ║")
	log.Println("║  Multi-tenant provider fan-out + event-sourced projection  ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	host := envDefault("HOST", "0.0.0.0")
	port := envInt("PORT", 8080)
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("Database connected")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to PG advisory locks", cfg.RedisURL, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s (distributed locking enabled)", cfg.RedisURL)
		}
		pingCancel()
	} else {
		log.Println("Redis not configured (REDIS_URL not set) — using PG advisory locks for distributed locking")
	}
	newLock := func(key string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, 15*time.Minute)
	}

	// Repositories
	campaigns := postgres.NewCampaignRepo(db)
	leads := postgres.NewLeadRepo(db)
	messages := postgres.NewMessageRepo(db)
	pieces := postgres.NewPieceRepo(db)
	organizations := postgres.NewOrganizationRepo(db)
	entitlements := postgres.NewEntitlementRepo(db)

	// Observability
	var exporter observability.Exporter
	if cfg.ObservabilityExportEnabled {
		exporter = observability.NewHTTPExporter(os.Getenv("OBSERVABILITY_EXPORT_URL"), cfg.ObservabilityExportToken)
	}
	metrics := observability.NewRegistry(
		observability.NewPostgresSnapshotWriter(db),
		exporter,
		observability.SLOThresholds(cfg.SLOThresholds),
	)

	// Event store + projection engine
	store := eventstore.NewPostgresStore(db)
	engine := projection.NewEngine(projection.Repos{
		Campaigns: campaigns,
		Leads:     leads,
		Messages:  messages,
		Pieces:    pieces,
	})
	if cfg.PayloadArchiveBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.PayloadArchiveRegion))
		if err != nil {
			log.Fatalf("Failed to load AWS config for payload archival: %v", err)
		}
		archiveStore := archive.NewStore(s3.NewFromConfig(awsCfg), cfg.PayloadArchiveBucket)
		engine = engine.WithArchive(archiveStore)
		log.Printf("Payload archival enabled: bucket=%s region=%s", cfg.PayloadArchiveBucket, cfg.PayloadArchiveRegion)
	} else {
		log.Println("Payload archival disabled (PAYLOAD_ARCHIVE_BUCKET not set) — every piece payload stays inline")
	}

	// Webhook gateway
	scopeResolver := webhook.NewPostgresScopeResolver(db)
	gateway := webhook.NewGateway(store, engine, scopeResolver, metrics, cfg.LobSchemaVersions)
	lobPolicy := webhook.NewReplayWindowPolicy(cfg.WebhookSecrets["lob"], cfg.LobSignatureMode, cfg.LobSignatureToleranceSecs)
	webhookHandlers := webhook.NewHandlers(gateway, cfg.WebhookSecrets["smartlead"], cfg.WebhookSecrets["heyreach"], lobPolicy, cfg.EmailBisonPathToken, cfg.EmailBisonAllowedOrigins)

	// Dead-letter & replay
	replayController := replay.NewController(store, engine, metrics, replay.BatchConfig{
		BatchSize:         cfg.ReplayBatchSize,
		MaxEventsPerRun:   cfg.ReplayMaxEventsPerRun,
		SleepMillis:       cfg.ReplayBaseSleepMillis,
		MaxSleepMillis:    cfg.ReplayMaxSleepMillis,
		BackoffMultiplier: cfg.ReplayBackoffMultiplier,
		QueueSize:         cfg.ReplayQueueSize,
	})
	replayController.NewLock = newLock
	replayHandlers := replay.NewHandlers(replayController)

	// Reconciliation
	runner := reconciliation.NewRunner(reconciliation.Repos{
		Campaigns: campaigns,
		Leads:     leads,
		Messages:  messages,
	})
	sweeper := reconciliation.NewSweeper(runner, organizations, entitlements, domain.MessageSyncMode(cfg.HeyReachMessageSyncMode))
	sweeper.NewLock = newLock
	reconciliationHandlers := reconciliation.NewHandlers(sweeper, cfg.InternalSchedulerSecret)

	// Domain write services
	providers := &service.ProviderResolver{Organizations: organizations, Entitlements: entitlements}
	serviceHandlers := service.NewHandlers(
		service.NewCampaignService(providers, campaigns, metrics),
		service.NewLeadService(providers, campaigns, leads, metrics),
		service.NewMessageService(providers, campaigns, metrics),
		service.NewPieceService(providers, pieces, metrics),
	)

	observabilityHandlers := observability.NewHandlers(metrics)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key", "X-Organization-ID", "X-User-ID", "X-Role", "X-Company-ID"},
		MaxAge:         300,
	}))

	// Webhook ingestion carries its own per-provider trust policy (§4.6) —
	// no tenant auth gate, the calling providers have no bearer token.
	webhookHandlers.RegisterRoutes(r)

	// The scheduled-reconciliation endpoint gates itself on the shared
	// secret header; the direct-trigger endpoint is still super-admin
	// scoped and sits behind the same auth group as replay/observability.
	r.Post("/internal/reconciliation/run-scheduled", reconciliationHandlers.HandleRunScheduled)

	r.Group(func(rt chi.Router) {
		rt.Use(identity.TrustedHeaderAuth)
		serviceHandlers.RegisterRoutes(rt)

		rt.Group(func(admin chi.Router) {
			admin.Use(identity.SuperAdminOnly)
			replayHandlers.RegisterRoutes(admin)
			observabilityHandlers.RegisterRoutes(admin)
			admin.Post("/internal/reconciliation/campaigns-leads", reconciliationHandlers.HandleRun)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Periodic snapshot persistence (§4.10) — flushes counters to storage
	// and any configured exporter on a fixed interval, independent of the
	// operator-triggered flush endpoint.
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := metrics.PersistSnapshot(ctx, "periodic", true); err != nil {
					logger.Event("metrics.persist_failed", map[string]any{"error": err.Error()})
				}
			}
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	db.Close()

	log.Println("Server stopped")
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

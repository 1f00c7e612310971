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
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ignite/seo-noc/internal/api"
	"github.com/ignite/seo-noc/internal/awsintegrations"
	"github.com/ignite/seo-noc/internal/config"
	"github.com/ignite/seo-noc/internal/feed"
	"github.com/ignite/seo-noc/internal/pkg/distlock"
	"github.com/ignite/seo-noc/internal/pkg/httpretry"
	"github.com/ignite/seo-noc/internal/pkg/logger"
	dynamorepo "github.com/ignite/seo-noc/internal/repository/dynamodb"
	"github.com/ignite/seo-noc/internal/repository/postgres"
	"github.com/ignite/seo-noc/internal/service/audit"
	"github.com/ignite/seo-noc/internal/service/availability"
	"github.com/ignite/seo-noc/internal/service/complaints"
	"github.com/ignite/seo-noc/internal/service/enrich"
	"github.com/ignite/seo-noc/internal/service/expiration"
	"github.com/ignite/seo-noc/internal/service/graph"
	"github.com/ignite/seo-noc/internal/service/ledger"
	"github.com/ignite/seo-noc/internal/service/linker"
	"github.com/ignite/seo-noc/internal/service/notify"
	"github.com/ignite/seo-noc/internal/service/scheduler"
	"github.com/ignite/seo-noc/internal/service/templates"
	"github.com/ignite/seo-noc/internal/snowflakeexport"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func parseLogLevel(s string) logger.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logger.DEBUG
	case "warn", "warning":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  SEO NOC Server (cmd/server/main.go)                        ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(parseLogLevel(cfg.LogLevel))
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	if cfg.Storage.PostgresDSN == "" {
		log.Fatal("storage.postgres_dsn (or DATABASE_URL) is required")
	}
	log.Printf("Connecting to Postgres: ...@%s/...", extractHost(cfg.Storage.PostgresDSN))
	db, err := sql.Open("postgres", cfg.Storage.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	pingCancel()
	if err != nil {
		log.Fatalf("Database ping failed: %v", err)
	}
	log.Println("Database connected")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rpingCtx, rpingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(rpingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to in-memory backends", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s", cfg.Redis.Addr)
		}
		rpingCancel()
	} else {
		log.Println("Redis not configured — using in-memory rate limiting/dedup")
	}

	var awsCfgLoaded bool
	awsOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWS.Region)}
	if cfg.AWS.Profile != "" {
		awsOpts = append(awsOpts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if awsErr != nil {
		log.Printf("Warning: AWS config load failed, AWS-backed integrations disabled: %v", awsErr)
	} else {
		awsCfgLoaded = true
	}

	// --- table-scoped Postgres repositories ---
	networkRepo := postgres.NewNetworkRepo(db)
	structureEntryRepo := postgres.NewStructureEntryRepo(db)
	assetDomainRepo := postgres.NewAssetDomainRepo(db)
	conflictRepo := postgres.NewConflictRepo(db)
	optimizationRepo := postgres.NewOptimizationRepo(db)
	changeLogRepo := postgres.NewChangeLogRepo(db)
	notificationTemplateRepo := postgres.NewNotificationTemplateRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	auditRepo := postgres.NewAuditRepo(db)
	feedRepo := postgres.NewFeedRepo(db)
	brandRepo := postgres.NewBrandRepo(db)
	complaintRepo := postgres.NewComplaintRepo(db)

	// --- composite repositories bridging multi-table service contracts ---
	graphRepo := postgres.NewGraphRepo(networkRepo, structureEntryRepo, assetDomainRepo)
	enrichRepo := postgres.NewEnrichRepo(structureEntryRepo, assetDomainRepo)
	linkerRepo := postgres.NewLinkerRepo(networkRepo, conflictRepo, optimizationRepo)
	schedulerRepo := postgres.NewSchedulerRepo(networkRepo, optimizationRepo, assetDomainRepo)
	complaintsRepo := postgres.NewComplaintsRepo(complaintRepo, networkRepo, optimizationRepo)

	// --- graph engine (no tier cache yet; tiers recomputed on every read).
	// The main-switch guard locks via Redis when available, falling back to
	// a Postgres advisory lock.
	graphService := graph.NewService(graphRepo, nil, func(key string, ttl time.Duration) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, ttl)
	})

	// --- enrichment engine, with an optional CloudFront CDN resolver ---
	var cdnResolver enrich.CDNResolver
	if awsCfgLoaded && cfg.AWS.EnableCDNResolver {
		cloudfrontClient := cloudfront.NewFromConfig(awsCfg)
		cdnResolver = awsintegrations.NewCDNResolver(cloudfrontClient)
		log.Println("CloudFront CDN resolver enabled")
	}
	enrichService := enrich.NewService(enrichRepo, graphService, cdnResolver)

	// --- audit log, with an optional DynamoDB mirror ---
	var auditMirror audit.Mirror
	if awsCfgLoaded && cfg.AWS.DynamoDBAuditTable != "" {
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		auditMirror = dynamorepo.NewAuditMirror(dynamoClient, cfg.AWS.DynamoDBAuditTable)
		log.Printf("DynamoDB audit mirror enabled (table: %s)", cfg.AWS.DynamoDBAuditTable)
	}
	auditService := audit.NewService(auditRepo, auditMirror)

	// --- templates (Render/RenderChange/Preview, shared across every alert path) ---
	templatesService := templates.NewService(notificationTemplateRepo, auditService)

	// --- notification dispatch: chat + monitoring chat + email adapters ---
	seoSettings, err := settingsRepo.TelegramSEOSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to load telegram_seo settings: %v", err)
	}
	monitoringSettings, err := settingsRepo.TelegramMonitoringSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to load telegram_monitoring settings: %v", err)
	}

	httpDoer := httpretry.NewRetryClient(http.DefaultClient, 3)
	chatAdapter := notify.NewChatAdapter(cfg.Chat.BaseURL, cfg.Chat.BotTokenDefault, httpDoer)
	monitoringChatAdapter := notify.NewChatAdapter(cfg.Chat.BaseURL, cfg.Chat.BotTokenDefault, httpDoer)

	var emailAdapter notify.Adapter
	if cfg.SES.Enabled && awsCfgLoaded {
		sesClient := sesv2.NewFromConfig(awsCfg)
		emailAdapter = notify.NewSESAdapter(sesClient, cfg.SES.From)
		log.Println("SES email adapter enabled")
	} else if cfg.OAuthEmail.Enabled {
		oauthCfg := clientcredentials.Config{
			ClientID:     cfg.OAuthEmail.ClientID,
			ClientSecret: cfg.OAuthEmail.ClientSecret,
			TokenURL:     cfg.OAuthEmail.TokenURL,
		}
		emailAdapter = notify.NewOAuthEmailAdapter(cfg.OAuthEmail.Endpoint, cfg.OAuthEmail.From, oauthCfg, httpDoer)
		log.Println("OAuth2 transactional email adapter enabled")
	} else {
		log.Println("No email adapter configured — email alerts are dropped")
	}

	notifyService := notify.NewService(chatAdapter, monitoringChatAdapter, emailAdapter, seoSettings, monitoringSettings)

	// --- change ledger: the write path for structure mutations (create/update/
	// delete/main-switch), wrapping graph writes with changelog + notification +
	// rate limiting. Driven by the operator surface's /nodes and /main-switch
	// routes below.
	var rateLimiter ledger.RateLimiter
	if redisClient != nil {
		rateLimiter = ledger.NewRedisRateLimiter(redisClient, time.Minute)
	} else {
		rateLimiter = ledger.NewInMemoryRateLimiter(time.Minute)
	}
	ledgerService := ledger.NewService(graphService, changeLogRepo, templatesService, notifyService, rateLimiter, auditService,
		graphService, brandRepo, enrichService)

	// --- conflict linker, with an optional Bedrock-assisted suggestion generator ---
	var suggestionGenerator linker.SuggestionGenerator
	if awsCfgLoaded && cfg.AWS.EnableSuggestionModel {
		bedrockClient := bedrockruntime.NewFromConfig(awsCfg)
		suggestionGenerator = awsintegrations.NewBedrockSuggestionGenerator(bedrockClient, cfg.AWS.BedrockModelID)
		log.Printf("Bedrock-assisted conflict suggestions enabled (model: %s)", cfg.AWS.BedrockModelID)
	}
	linkerService := linker.NewService(linkerRepo, notifyService, suggestionGenerator, cfg.Chat.ChatIDDefault)

	// --- complaint lifecycle (file/review/resolve with optimization rollup) ---
	complaintsService := complaints.NewService(complaintsRepo, templatesService, notifyService)

	// --- availability engine, with an optional Route53 secondary prober ---
	var prober availability.Prober = availability.NewHTTPProber()
	if awsCfgLoaded && cfg.AWS.EnableRoute53Prober {
		route53Client := route53.NewFromConfig(awsCfg)
		prober = awsintegrations.NewRoute53SecondaryProber(prober, route53Client)
		log.Println("Route53 secondary prober enabled")
	}
	var availabilityDedup availability.AlertDeduper
	if redisClient != nil {
		availabilityDedup = availability.NewRedisDeduper(redisClient)
	} else {
		availabilityDedup = availability.NewInMemoryDeduper()
	}
	monitoringConfigSettings, err := settingsRepo.MonitoringConfigSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to load monitoring_config settings: %v", err)
	}
	availabilityService := availability.NewService(
		assetDomainRepo,
		prober,
		templatesService,
		notifyService,
		enrichService,
		availabilityDedup,
		monitoringConfigSettings.RecoveryAlertsEnabled,
		cfg.Monitoring.AvailabilityInterval(),
	)

	// --- registrar/TLS expiration engine ---
	expirationService := expiration.NewService(
		assetDomainRepo,
		templatesService,
		notifyService,
		enrichService,
		expiration.NewInMemoryDeduper(),
		cfg.Monitoring.ExpirationCheckInterval(),
	)

	// --- scheduler loops: weekly digest, optimization reminders, unmonitored reminders ---
	digestService := scheduler.NewDigestService(schedulerRepo, settingsRepo, notifyService, time.Minute)
	optReminderService := scheduler.NewOptimizationReminderService(schedulerRepo, templatesService, notifyService, settingsRepo, time.Hour)
	var reminderDedup scheduler.ReminderDeduper
	if redisClient != nil {
		reminderDedup = scheduler.NewRedisReminderDeduper(redisClient)
	} else {
		reminderDedup = scheduler.NewInMemoryReminderDeduper()
	}
	unmonitoredService := scheduler.NewUnmonitoredReminderService(
		schedulerRepo, templatesService, notifyService, enrichService, reminderDedup, cfg.Chat.ChatIDDefault, time.Hour,
	)

	// --- optional AWS TLS-certificate poller, independent of the expiration engine's DB-backed clock ---
	var certPoller *awsintegrations.CertExpirationPoller
	if awsCfgLoaded && cfg.AWS.EnableCertPoller {
		acmClient := acm.NewFromConfig(awsCfg)
		certPoller = awsintegrations.NewCertExpirationPoller(assetDomainRepo, acmClient, cfg.Monitoring.ExpirationCheckInterval())
	}

	// --- optional Snowflake conflict-metrics export ---
	var exporter *snowflakeexport.Exporter
	if cfg.Snowflake.Enabled {
		sfCfg := snowflakeexport.Config{
			Account:   cfg.Snowflake.Account,
			User:      cfg.Snowflake.User,
			Password:  cfg.Snowflake.Password,
			Database:  cfg.Snowflake.Database,
			Schema:    cfg.Snowflake.Schema,
			Warehouse: cfg.Snowflake.Warehouse,
			Enabled:   cfg.Snowflake.Enabled,
		}
		sfClient, err := snowflakeexport.NewClient(sfCfg)
		if err != nil {
			log.Printf("Warning: Snowflake client init failed: %v", err)
		} else {
			exporter = snowflakeexport.NewExporter(sfClient, linkerService, cfg.Snowflake.MetricsWindowDays, cfg.Snowflake.SnowflakeInterval())
		}
	}

	// --- optional registrar status-feed poller ---
	var feedPoller *feed.Poller
	if cfg.Feed.Enabled {
		feedPoller = feed.NewPoller(feedRepo, templatesService, notifyService, cfg.Feed.FeedPollInterval())
	}

	// Start every background loop.
	go availabilityService.Start(ctx)
	go expirationService.Start(ctx)
	go digestService.Start(ctx)
	go optReminderService.Start(ctx)
	go unmonitoredService.Start(ctx)
	if certPoller != nil {
		go certPoller.Start(ctx)
		log.Println("AWS ACM certificate poller started")
	}
	if exporter != nil {
		go exporter.Start(ctx)
		log.Println("Snowflake conflict-metrics export started")
	}
	if feedPoller != nil {
		go feedPoller.Start(ctx)
		log.Println("Registrar status-feed poller started")
	}

	// --- operator HTTP surface ---
	handlers := &api.Handlers{
		Graph:      graphService,
		Linker:     linkerService,
		Networks:   networkRepo,
		Templates:  templatesService,
		Digest:     digestService,
		Ledger:     ledgerService,
		Entries:    graphService,
		Complaints: complaintsService,
		Enrich:     enrichService,
		Renderer:   templatesService,
		Notifier:   notifyService,
		Domains:    assetDomainRepo,
		Health:     api.NewHealthChecker(db, redisClient),
	}
	server := api.NewServer(handlers)

	// auditService is already wired into templatesService (template_change/
	// template_reset) and ledgerService (seo_change_event/
	// notification_failed_event); no route in this binary queries it directly
	// yet, but every privileged write funnels a Record() call through it.

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting operator API on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
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

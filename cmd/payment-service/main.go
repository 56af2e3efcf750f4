package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/merchkit/payment-service/internal/app/background"
	"github.com/merchkit/payment-service/internal/config"
	"github.com/merchkit/payment-service/internal/delivery/http/handlers"
	"github.com/merchkit/payment-service/internal/delivery/http/router"
	"github.com/merchkit/payment-service/internal/domain"
	"github.com/merchkit/payment-service/internal/infrastructure/identity"
	"github.com/merchkit/payment-service/internal/infrastructure/inventory"
	"github.com/merchkit/payment-service/internal/infrastructure/kafka"
	"github.com/merchkit/payment-service/internal/infrastructure/metrics"
	"github.com/merchkit/payment-service/internal/infrastructure/migrate"
	"github.com/merchkit/payment-service/internal/infrastructure/postgres"
	"github.com/merchkit/payment-service/internal/infrastructure/ratelimit"
	"github.com/merchkit/payment-service/internal/infrastructure/secrets"
	"github.com/merchkit/payment-service/internal/usecase/reconcile"
	"github.com/merchkit/payment-service/internal/usecase/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg.LogConfig)

	// Init database
	db := postgres.MustInitDB(cfg)
	if err := migrate.RunMigrations(db, cfg.PaymentDB.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	store := postgres.NewStore(db)

	// Init metrics
	reconciliationMetrics := metrics.NewReconciliationMetrics()

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
	publisher := kafka.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	// Init reconciliation engine
	engine := reconcile.NewDefaultEngine(
		store,
		inventory.NewMemoryInventory(nil),
		publisher,
		reconciliationMetrics,
		cfg.Orders.PendingTTL,
	)

	// Init webhook gateway
	secretsProvider := secrets.NewEnvSecretsProvider()
	gateway := webhook.NewGateway(secretsProvider, cfg.Webhook.AllowUnverified, cfg.Production())

	// Init admission guard
	guard := ratelimit.NewGuard(
		map[ratelimit.Class]ratelimit.Limit{
			ratelimit.ClassAuth:            {Capacity: cfg.Admission.Auth.Capacity, Window: cfg.Admission.Auth.Window},
			ratelimit.ClassWebhook:         {Capacity: cfg.Admission.WebhookClass.Capacity, Window: cfg.Admission.WebhookClass.Window},
			ratelimit.ClassPaymentMutation: {Capacity: cfg.Admission.PaymentMutation.Capacity, Window: cfg.Admission.PaymentMutation.Window},
			ratelimit.ClassGeneral:         {Capacity: cfg.Admission.General.Capacity, Window: cfg.Admission.General.Window},
		},
		ratelimit.NewMemoryCounterStore(),
		ratelimit.WithThrottleHook(reconciliationMetrics.RecordThrottled),
		ratelimit.WithFailOpenHook(reconciliationMetrics.RecordFailOpen),
	)
	defer guard.Close()

	// Init identity resolver
	resolver := identity.NewStaticResolver(loadAPIClients())

	// Background workers
	deferred := background.NewDeferredQueue(engine, 1024)
	tasks := background.NewBackgroundTasks(engine, deferred, cfg.Orders.PendingTTL/2)
	tasks.StartAll(context.Background())

	// HTTP server
	r := router.New(router.Handlers{
		Webhook: handlers.NewWebhookHandler(gateway, engine, deferred, reconciliationMetrics, cfg.Webhook),
		Order:   handlers.NewOrderHandler(engine),
		Payment: handlers.NewPaymentHandler(engine),
	}, guard, resolver)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	slog.Info("starting payment service", "addr", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("http server stopped: %v", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// loadAPIClients reads the static API key registry from the environment.
// Format: API_CLIENTS="key1:client1:business1,key2:client2:business2".
func loadAPIClients() map[string]domain.Identity {
	clients := make(map[string]domain.Identity)
	raw := os.Getenv("API_CLIENTS")
	if raw == "" {
		return clients
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			log.Fatalf("malformed API_CLIENTS entry: %q", entry)
		}
		clients[parts[0]] = domain.Identity{ClientID: parts[1], BusinessID: parts[2]}
	}
	return clients
}

// Package coordination assembles the collaborative-editing backend: it
// wires every domain service onto one router, runs the lazy GC sweep in
// front of the API, and owns the server lifecycle.
package coordination

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"

	auditrepo "pressroom/internal/audit/repository"
	auditservice "pressroom/internal/audit/service"
	lockrepo "pressroom/internal/locks/repository"
	lockservice "pressroom/internal/locks/service"
	notificationrepo "pressroom/internal/notifications/repository"
	notificationservice "pressroom/internal/notifications/service"
	presencerepo "pressroom/internal/presence/repository"
	presenceservice "pressroom/internal/presence/service"
	presencevalidator "pressroom/internal/presence/validator"
	"pressroom/internal/scheduler/actions"
	schedulerrepo "pressroom/internal/scheduler/repository"
	schedulerservice "pressroom/internal/scheduler/service"
	schedulervalidator "pressroom/internal/scheduler/validator"

	audithandler "pressroom/internal/audit/handler"
	lockhandler "pressroom/internal/locks/handler"
	notificationhandler "pressroom/internal/notifications/handler"
	presencehandler "pressroom/internal/presence/handler"
	schedulerhandler "pressroom/internal/scheduler/handler"

	"pressroom/pkg/config"
	"pressroom/pkg/content"
	"pressroom/pkg/contracts"
	"pressroom/pkg/hooks"
	"pressroom/pkg/kafka"
	kafkaconfig "pressroom/pkg/kafka/config"
	"pressroom/pkg/metrics"
	"pressroom/pkg/middleware"
)

// Services bundles the wired domain services so callers (the HTTP app
// and the one-shot publisher) share a single assembly path.
type Services struct {
	Locks         lockservice.LockService
	Presence      presenceservice.SessionService
	Notifications notificationservice.NotificationService
	Scheduler     schedulerservice.ScheduledItemService
	Audit         auditservice.AuditService

	Sweeper  *Sweeper
	producer *kafka.Producer
	registry *prometheus.Registry
}

// NewServices wires repositories, validators and domain services
// against the configured Mongo database.
func NewServices(cfg *config.Config) *Services {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	auditService := auditservice.NewAuditService(
		auditrepo.NewMongoAuditRepository(cfg),
		cfg,
	)

	lockService := lockservice.NewLockService(
		lockrepo.NewMongoLockRepository(cfg),
		cfg,
		auditService,
		collector,
	)

	presenceService := presenceservice.NewSessionService(
		presencerepo.NewMongoSessionRepository(cfg),
		presencevalidator.NewSessionValidator(cfg.Log),
		cfg,
	)

	notificationService := notificationservice.NewNotificationService(
		notificationrepo.NewMongoNotificationRepository(cfg),
		cfg,
		collector,
	)

	store := content.NewStore(cfg.ContentDir, cfg.SiteBaseURL, cfg.Log)
	runner := actions.NewRunner(
		store,
		hooks.NewDeployClient(cfg.DeployHookURL, cfg.HookTimeout),
		hooks.NewWebhookSender(cfg.WebhookURL, cfg.HookTimeout),
		hooks.NewCachePurger(cfg.CachePurgeURL, cfg.HookTimeout),
		cfg.Log,
	)

	var producer *kafka.Producer
	var emitter schedulerservice.EventEmitter
	if kafkaconfig.Enabled() {
		kafkaCfg := kafkaconfig.Load()
		p, err := kafka.NewProducer(kafkaCfg, kafkaCfg.Topic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		producer = p
		emitter = p
		cfg.Log.Info("Kafka producer configured",
			"brokers", kafkaCfg.Brokers,
			"topic", kafkaCfg.Topic,
		)
	} else {
		cfg.Log.Info("Kafka brokers not configured, lifecycle events disabled")
	}

	schedulerService := schedulerservice.NewScheduledItemService(
		schedulerrepo.NewMongoScheduledItemRepository(cfg),
		schedulervalidator.NewScheduledItemValidator(cfg.Log),
		runner,
		notificationService,
		auditService,
		emitter,
		cfg,
		collector,
	)

	sweeper := NewSweeper(collector, cfg.Log)
	sweeper.Register(lockrepo.CollectionName, lockService)
	sweeper.Register(presencerepo.CollectionName, presenceService)
	sweeper.Register(notificationrepo.CollectionName, notificationService)

	return &Services{
		Locks:         lockService,
		Presence:      presenceService,
		Notifications: notificationService,
		Scheduler:     schedulerService,
		Audit:         auditService,
		Sweeper:       sweeper,
		producer:      producer,
		registry:      registry,
	}
}

// Close releases resources the services hold (currently the Kafka
// producer).
func (s *Services) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

type Application struct {
	cfg      *config.Config
	services *Services
	server   *http.Server
}

func NewApplication(cfg *config.Config, services *Services) *Application {
	a := &Application{
		cfg:      cfg,
		services: services,
	}
	a.setServer()
	return a
}

func (a *Application) setServer() {
	cfg := a.cfg

	appRouter := httprouter.New()
	handlers := []contracts.Handler{
		lockhandler.NewLockHandler(a.services.Locks, cfg.Log),
		presencehandler.NewSessionHandler(a.services.Presence, cfg.Log),
		notificationhandler.NewNotificationHandler(a.services.Notifications, cfg.Log),
		schedulerhandler.NewScheduledItemHandler(a.services.Scheduler, cfg.Log),
		audithandler.NewAuditHandler(a.services.Audit, cfg.Log),
	}
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	var appHandler http.Handler = appRouter
	appHandler = a.services.Sweeper.Middleware()(appHandler)
	appHandler = middleware.RequestTimeout(cfg.RequestTimeout)(appHandler)
	appHandler = middleware.ContentTypeValidation(cfg.Log)(appHandler)
	appHandler = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(appHandler)
	appHandler = middleware.RequestLogging(cfg.Log)(appHandler)
	appHandler = middleware.Recovery(cfg.Log)(appHandler)

	healthRouter := httprouter.New()
	NewHealthHandler(cfg.Client.Mongo, cfg.Log).RegisterRoutes(healthRouter)
	var healthHandler http.Handler = healthRouter
	healthHandler = middleware.RequestLogging(cfg.Log)(healthHandler)
	healthHandler = middleware.Recovery(cfg.Log)(healthHandler)

	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler)
	mux.Handle("/ready", healthHandler)
	mux.Handle("/metrics", metrics.Handler(a.services.registry))
	mux.Handle("/", appHandler)

	a.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	cfg.Log.Info("HTTP server configured", "port", cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	if err := a.services.Close(); err != nil {
		a.cfg.Log.Error("Failed to close services", "error", err)
	}

	a.cfg.Log.Info("Server stopped gracefully")
}

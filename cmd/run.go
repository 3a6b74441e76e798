package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skinvault/api"
	"skinvault/application"
	"skinvault/config"
	"skinvault/database"
	"skinvault/domain/events"
	"skinvault/infrastructure"
	"skinvault/infrastructure/observability"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run initializes and starts the service
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting skinvault...")

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.DatabasePool())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics")
		}
	}()

	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled {
		natsClient = infrastructure.NewNATSClient(cfg.NATSServerList())
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Warn("Failed to close NATS connection")
			}
		}()
	} else {
		log.Info("NATS disabled, events are delivered to local handlers only")
	}

	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureDomainEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	publisher.RegisterLocalHandler(events.EventTypeTransactionRecorded, func(_ context.Context, event events.Event) error {
		if recorded, ok := event.(events.TransactionRecordedEvent); ok {
			observability.GetMetrics().RecordLedgerRow(string(recorded.Reason))
		}
		return nil
	})

	var balanceCache application.BalanceCache
	if cfg.RedisURL != "" {
		cache, err := infrastructure.NewBalanceCache(ctx, cfg.RedisURL, cfg.BalanceCacheTTL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				log.WithError(err).Warn("Failed to close redis connection")
			}
		}()
		publisher.RegisterLocalHandler(events.EventTypeTransactionRecorded, cache.HandleTransactionRecorded)
		balanceCache = cache
		log.Info("Balance cache enabled")
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)
	engine := application.NewEngine(uowFactory, infrastructure.NewCryptoRandomSource(), balanceCache)

	router := api.NewRouter(api.RouterConfig{
		JWTSecret:    cfg.JWTSecret,
		JWTIssuer:    cfg.JWTIssuer,
		ServiceToken: cfg.ServiceToken,
	}, engine)
	server := api.NewServer(cfg.HTTPAddr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		stop := application.NewListingExpiryWorker(engine, cfg.ExpirySweepInterval, cfg.ExpirySweepBatch).Start(gctx)
		<-gctx.Done()
		stop()
		return nil
	})

	err = g.Wait()
	log.Info("Shutting down skinvault...")
	return err
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	appoutbox "retreat/internal/app/outbox"
	"retreat/internal/app/schedule"
	availabilityapp "retreat/internal/app/services/availability"
	bookingapp "retreat/internal/app/services/booking"
	calendarsyncapp "retreat/internal/app/services/calendarsync"
	domainavailability "retreat/internal/domain/availability"
	domainbooking "retreat/internal/domain/booking"
	domainpricing "retreat/internal/domain/pricing"
	"retreat/internal/infra/broker/kafka"
	"retreat/internal/infra/config"
	mongodb "retreat/internal/infra/db/mongo"
	"retreat/internal/infra/feeds"
	ginserver "retreat/internal/infra/http/gin"
	"retreat/internal/infra/obs"
	infraoutbox "retreat/internal/infra/outbox"
	"retreat/internal/infra/payments"
	"retreat/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	stores, ready, err := buildStores(cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	gateway := payments.NewClient(
		cfg.PaymentAPIURL,
		cfg.PaymentAPIKey,
		cfg.PaymentSuccessURL,
		cfg.PaymentCancelURL,
		15*time.Second,
		logger,
	)
	verifier := payments.NewVerifier(cfg.PaymentWebhookKey)
	encoder := appoutbox.JSONEventEncoder{}

	bookingService := &bookingapp.Service{
		Intents:      stores.intents,
		Availability: stores.blockedDates,
		Rates:        stores.rates,
		Payments:     gateway,
		Outbox:       stores.outbox,
		Encoder:      encoder,
		Logger:       logger,
	}
	availabilityService := &availabilityapp.Service{
		Availability: stores.blockedDates,
		Rates:        stores.rates,
	}
	syncService := &calendarsyncapp.Service{
		Feeds:        feeds.NewFetcher(15 * time.Second),
		Availability: stores.blockedDates,
		Outbox:       stores.outbox,
		Encoder:      encoder,
		Logger:       logger,
	}

	handlers := ginserver.Handlers{
		Availability: ginserver.AvailabilityHandler{Queries: availabilityService},
		Booking:      ginserver.BookingHandler{Service: bookingService},
		Webhook: ginserver.WebhookHandler{
			Verifier: verifier,
			Service:  bookingService,
			Logger:   logger,
		},
		Admin: ginserver.AdminHandler{
			Sync:         syncService,
			Booking:      bookingService,
			Availability: stores.blockedDates,
			Rates:        stores.rates,
			Feeds:        cfg.CalendarFeeds,
			Currency:     cfg.Currency,
			Logger:       logger,
		},
		AdminMiddleware: ginserver.AdminAuth(cfg.AdminToken),
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: ready,
	}, handlers)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, sarama.NewConfig())
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		worker := &infraoutbox.Worker{
			Store:       stores.outbox,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox worker started", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events stay in the outbox")
	}

	go schedule.Loop(ctx, schedule.Job{
		Name:     "expire-stale-intents",
		Interval: cfg.SweepInterval,
		Run: func(ctx context.Context) error {
			expired, err := bookingService.ExpireStale(ctx, cfg.PendingIntentTTL)
			if err != nil {
				return err
			}
			if expired > 0 {
				logger.Info("expired stale intents", "count", expired)
			}
			return nil
		},
	}, logger)
	if len(cfg.CalendarFeeds) > 0 {
		go schedule.Loop(ctx, schedule.Job{
			Name:     "calendar-sync",
			Interval: cfg.SyncInterval,
			Run: func(ctx context.Context) error {
				for _, feed := range cfg.CalendarFeeds {
					if _, err := syncService.Sync(ctx, feed.URL, feed.Platform); err != nil {
						logger.Error("calendar sync failed", "platform", feed.Platform, "error", err)
					}
				}
				return nil
			},
		}, logger)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type storeSet struct {
	intents      domainbooking.Repository
	blockedDates domainavailability.Store
	rates        domainpricing.RateLog
	outbox       *memory.Outbox
}

// buildStores selects the persistence backend. The outbox stays in memory
// in both modes; the worker drains it fast enough that event loss is
// limited to a crash window.
func buildStores(cfg config.Config, logger *slog.Logger) (storeSet, func() error, error) {
	outboxStore := memory.NewOutbox()

	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storeSet{}, nil, err
		}
		indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.EnsureIndexes(indexCtx); err != nil {
			return storeSet{}, nil, err
		}
		logger.Info("mongo storage ready", "database", cfg.MongoDB)
		return storeSet{
			intents:      mongodb.NewIntentRepository(client.DB),
			blockedDates: mongodb.NewBlockedDateRepository(client.DB),
			rates:        mongodb.NewRateLogRepository(client.DB),
			outbox:       outboxStore,
		}, func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}, nil
	}

	logger.Info("in-memory storage ready")
	return storeSet{
		intents:      memory.NewIntentRepository(),
		blockedDates: memory.NewBlockedDateStore(),
		rates:        memory.NewRateLog(),
		outbox:       outboxStore,
	}, func() error { return nil }, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

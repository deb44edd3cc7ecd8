package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/BearBump/FoodBridge/config"
	donationsapi "github.com/BearBump/FoodBridge/internal/api/donations_api"
	"github.com/BearBump/FoodBridge/internal/broker/kafka"
	"github.com/BearBump/FoodBridge/internal/cache/rediscache"
	"github.com/BearBump/FoodBridge/internal/logger"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/services/donations"
	"github.com/BearBump/FoodBridge/internal/storage/pgdonations"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

type foodBridgeAPIApp struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   apiOpts
	deps   apiDeps

	closers []func()
}

func mustBootstrapFoodBridgeAPI() *foodBridgeAPIApp {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Environment)

	httpAddr := cfg.FoodBridge.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.FoodBridge.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "foodbridge-api"
	}
	updatedTopic := cfg.Kafka.DonationUpdatedTopicName
	if updatedTopic == "" {
		updatedTopic = "donation.updated"
	}
	phaseTopic := cfg.Kafka.PhaseChangedTopicName
	if phaseTopic == "" {
		phaseTopic = "donation.phase_changed"
	}
	cacheTTL := time.Duration(cfg.FoodBridge.SnapshotCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	rateLimit := cfg.FoodBridge.RateLimitPerMinute
	if rateLimit <= 0 {
		rateLimit = 600
	}
	defaultZone := tzclock.ResolveZone(cfg.FoodBridge.DefaultZone)

	st := mustOpenPostgresWithRetry(cfg.Database.ConnString(), 60*time.Second, log)
	rc := rediscache.New(cfg.Redis.Addr())
	rl := rediscache.NewClientLimiter(cfg.Redis.Addr(), int64(rateLimit), time.Minute)
	producer := kafka.NewProducer(cfg.Kafka.Brokers())
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers(), updatedTopic, consumerGroup)
	m := metrics.New()

	svc := donations.New(st, rc, cacheTTL).
		WithPublisher(producer, phaseTopic).
		WithDefaultZone(defaultZone).
		WithLogger(log).
		WithMetrics(m)
	api := donationsapi.New(svc).
		WithMetrics(m).
		WithLocale(cfg.FoodBridge.Locale).
		WithLogger(log).
		WithRateLimit(rl)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &foodBridgeAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: apiOpts{
			httpAddr:      httpAddr,
			swaggerPath:   swaggerPath,
			topic:         updatedTopic,
			consumerGroup: consumerGroup,
		},
		deps: apiDeps{
			svc:      svc,
			api:      api,
			metrics:  m,
			consumer: consumer,
			log:      log,
			ready: func(ctx context.Context) error {
				if err := st.Ping(ctx); err != nil {
					return err
				}
				return rc.Ping(ctx)
			},
		},
		closers: []func(){
			func() { _ = consumer.Close() },
			func() { _ = producer.Close() },
			func() { _ = rl.Close() },
			func() { _ = rc.Close() },
			st.Close,
		},
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration, log logrus.FieldLogger) *pgdonations.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgdonations.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		log.WithError(err).Warn("postgres not ready, retrying")
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *foodBridgeAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for _, c := range a.closers {
		c()
	}
}

func (a *foodBridgeAPIApp) Run() error {
	return runFoodBridgeAPI(a.ctx, a.opts, a.deps)
}

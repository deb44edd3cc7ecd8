package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BearBump/FoodBridge/config"
	"github.com/BearBump/FoodBridge/internal/broker/kafka"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/services/sweeper"
	"github.com/BearBump/FoodBridge/internal/storage/pgdonations"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

type workerFactories struct {
	newStorage   func(cfg *config.Config) (repo sweeper.Repository, closeFn func(), err error)
	newPublisher func(cfg *config.Config) (pub sweeper.Publisher, closeFn func())
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (sweeper.Repository, func(), error) {
			st, err := pgdonations.New(cfg.Database.ConnString())
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newPublisher: func(cfg *config.Config) (sweeper.Publisher, func()) {
			p := kafka.NewProducer(cfg.Kafka.Brokers())
			return p, func() { _ = p.Close() }
		},
	}
}

type workerSettings struct {
	topic       string
	schedule    string
	batchSize   int
	defaultZone *time.Location
	httpAddr    string
}

func settingsFromConfig(cfg *config.Config) workerSettings {
	s := workerSettings{
		topic:       cfg.Kafka.AttentionTopicName,
		schedule:    cfg.FoodBridge.SweepCron,
		batchSize:   cfg.FoodBridge.SweepBatchSize,
		defaultZone: tzclock.ResolveZone(cfg.FoodBridge.DefaultZone),
		httpAddr:    cfg.FoodBridge.WorkerHTTPAddr,
	}
	if s.topic == "" {
		s.topic = "donation.attention"
	}
	if s.schedule == "" {
		s.schedule = sweeper.DefaultSchedule
	}
	if s.batchSize <= 0 {
		s.batchSize = 500
	}
	if s.batchSize > sweeper.MaxBatchSize {
		s.batchSize = sweeper.MaxBatchSize
	}
	if s.httpAddr == "" {
		s.httpAddr = ":8082"
	}
	return s
}

// RunFoodBridgeWorker runs the sweeper and the ops HTTP server until ctx is
// done or either of them fails.
func RunFoodBridgeWorker(ctx context.Context, cfg *config.Config, swaggerPath string, f workerFactories, log logrus.FieldLogger) error {
	settings := settingsFromConfig(cfg)

	repo, closeRepo, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeRepo != nil {
		defer closeRepo()
	}
	pub, closePub := f.newPublisher(cfg)
	if closePub != nil {
		defer closePub()
	}

	m := metrics.New()
	sw := sweeper.New(repo, pub, settings.topic).
		WithSettings(settings.schedule, settings.batchSize, settings.defaultZone).
		WithLogger(log).
		WithMetrics(m)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, workerHTTPOpts{
			httpAddr:    settings.httpAddr,
			swaggerPath: swaggerPath,
			sweeper:     sw,
			settings:    settings,
			metrics:     m,
		})
	}()

	sweepErr := make(chan error, 1)
	go func() { sweepErr <- sw.Run(ctx) }()

	log.WithFields(logrus.Fields{"schedule": settings.schedule, "topic": settings.topic}).Info("sweeper started")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-sweepErr:
		return err
	case err := <-httpErr:
		return err
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/FoodBridge/config"
	"github.com/BearBump/FoodBridge/internal/broker/messages"
	"github.com/BearBump/FoodBridge/internal/logger"
	"github.com/BearBump/FoodBridge/internal/metrics"
	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/services/sweeper"
)

type fakeRepo struct {
	items []*models.Donation
}

func (r *fakeRepo) ListOpenDonations(ctx context.Context, terminal []string, after *models.DonationCursor, limit int) ([]*models.Donation, error) {
	if after != nil {
		return nil, nil
	}
	return r.items, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, topic, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.topics)
}

func writeSwagger(t *testing.T) string {
	t.Helper()
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))
	return sw
}

func TestSettingsFromConfig_Defaults(t *testing.T) {
	s := settingsFromConfig(&config.Config{})
	require.Equal(t, "donation.attention", s.topic)
	require.Equal(t, sweeper.DefaultSchedule, s.schedule)
	require.Equal(t, 500, s.batchSize)
	require.Equal(t, ":8082", s.httpAddr)
	require.Equal(t, time.UTC, s.defaultZone)

	s = settingsFromConfig(&config.Config{
		Kafka:      config.KafkaConfig{AttentionTopicName: "att"},
		FoodBridge: config.FoodBridgeConfig{SweepCron: "0 * * * *", SweepBatchSize: 5, DefaultZone: "Europe/Paris"},
	})
	require.Equal(t, "att", s.topic)
	require.Equal(t, "0 * * * *", s.schedule)
	require.Equal(t, 5, s.batchSize)
	require.Equal(t, "Europe/Paris", s.defaultZone.String())

	s = settingsFromConfig(&config.Config{FoodBridge: config.FoodBridgeConfig{SweepBatchSize: 5000}})
	require.Equal(t, sweeper.MaxBatchSize, s.batchSize)
}

func TestDefaultWorkerFactories_PublisherNonNil(t *testing.T) {
	f := defaultWorkerFactories()
	cfg := &config.Config{Kafka: config.KafkaConfig{Host: "localhost", Port: 9092}}
	pub, closeFn := f.newPublisher(cfg)
	require.NotNil(t, pub)
	closeFn()
}

func TestRunFoodBridgeWorker_ContextCanceled(t *testing.T) {
	calledClose := false
	f := workerFactories{
		newStorage: func(cfg *config.Config) (sweeper.Repository, func(), error) {
			return &fakeRepo{}, func() { calledClose = true }, nil
		},
		newPublisher: func(cfg *config.Config) (sweeper.Publisher, func()) {
			return &recordingPublisher{}, nil
		},
	}
	cfg := &config.Config{FoodBridge: config.FoodBridgeConfig{WorkerHTTPAddr: "127.0.0.1:0"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunFoodBridgeWorker(ctx, cfg, writeSwagger(t), f, logger.Discard())
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, calledClose)
}

func TestRunFoodBridgeWorker_StorageError(t *testing.T) {
	f := workerFactories{
		newStorage: func(cfg *config.Config) (sweeper.Repository, func(), error) {
			return nil, nil, errors.New("pg down")
		},
	}
	err := RunFoodBridgeWorker(context.Background(), &config.Config{}, "", f, logger.Discard())
	require.EqualError(t, err, "pg down")
}

func TestRunFoodBridgeWorker_MissingSwaggerFails(t *testing.T) {
	f := workerFactories{
		newStorage: func(cfg *config.Config) (sweeper.Repository, func(), error) {
			return &fakeRepo{}, nil, nil
		},
		newPublisher: func(cfg *config.Config) (sweeper.Publisher, func()) {
			return &recordingPublisher{}, nil
		},
	}
	cfg := &config.Config{FoodBridge: config.FoodBridgeConfig{WorkerHTTPAddr: "127.0.0.1:0"}}
	err := RunFoodBridgeWorker(context.Background(), cfg, "", f, logger.Discard())
	require.Error(t, err)
	require.Contains(t, err.Error(), "swaggerPath")
}

func TestWorkerRouter_TriggerStatsConfig(t *testing.T) {
	expired := civil.Date{Year: 2020, Month: 1, Day: 1}
	pub := &recordingPublisher{}
	m := metrics.New()
	sw := sweeper.New(&fakeRepo{items: []*models.Donation{
		{ID: "old", Status: models.DonationStatusClaimed, ExpiryDate: &expired},
	}}, pub, "donation.attention").WithLogger(logger.Discard()).WithMetrics(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sw.Run(ctx) }()

	srv := httptest.NewServer(newWorkerRouter(workerHTTPOpts{
		swaggerPath: writeSwagger(t),
		sweeper:     sw,
		settings:    settingsFromConfig(&config.Config{}),
		metrics:     m,
	}))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/trigger", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool { return pub.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	var st sweeper.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	resp.Body.Close()
	require.Equal(t, int64(1), st.TotalFlagged)

	resp, err = http.Get(srv.URL + "/config")
	require.NoError(t, err)
	var cfgOut map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfgOut))
	resp.Body.Close()
	require.Equal(t, "donation.attention", cfgOut["attentionTopic"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Contains(t, string(body), `foodbridge_sweeper_attention_total{reason="`+messages.AttentionExpiryPassed+`"} 1`)

	resp, err = http.Get(srv.URL + "/swagger.json")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  donation_updated_topic_name: "donation.updated"
  phase_changed_topic_name: "donation.phase_changed"
redis:
  host: "localhost"
  port: 6379
log:
  level: "debug"
  environment: "production"
foodbridge:
  http_addr: ":8080"
  kafka_consumer_group: "foodbridge-api"
  snapshot_cache_ttl_seconds: 600
  default_zone: "America/New_York"
  locale: "en-GB"
  sweep_cron: "*/10 * * * *"
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.Database.ConnString())
	require.Equal(t, "donation.updated", cfg.Kafka.DonationUpdatedTopicName)
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers())
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, ":8080", cfg.FoodBridge.HTTPAddr)
	require.Equal(t, "America/New_York", cfg.FoodBridge.DefaultZone)
	require.Equal(t, "*/10 * * * *", cfg.FoodBridge.SweepCron)
	require.Empty(t, cfg.Kafka.AttentionTopicName)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("database: [unclosed"), 0o600))
	_, err = LoadConfig(p)
	require.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8004, cfg.HTTPPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.SummaryTTL())
	assert.Equal(t, time.Duration(0), cfg.TargetTTL())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WISHLIST_HTTP_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("SUMMARY_CACHE_TTL_MINUTES", "5")
	t.Setenv("QUICK_SAVE_TARGET_TTL_HOURS", "48")
	t.Setenv("POSTGRES_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.SummaryTTL())
	assert.Equal(t, 48*time.Hour, cfg.TargetTTL())
	assert.Equal(t, "db.internal", cfg.Postgres().Host)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("WISHLIST_HTTP_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeTTL(t *testing.T) {
	t.Setenv("SUMMARY_CACHE_TTL_MINUTES", "-1")

	_, err := Load()
	assert.Error(t, err)
}

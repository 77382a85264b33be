package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"BLOODLINK_ADDR", "KAFKA_EVENTS_TOPIC", "TOKEN_TTL",
		"AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW", "KAFKA_BROKERS",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "bloodlink.events", cfg.KafkaTopic)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092 ,kafka-2:9092,, kafka-1:9092")
	cfg := FromEnv()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

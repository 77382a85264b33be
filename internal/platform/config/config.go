package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "bloodlink/pkg/platform/strings"
)

// Server captures process-level configuration pulled from the environment.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string
	TokenTTL      time.Duration

	// AuthRateLimit requests per AuthRateWindow per client IP on the auth
	// endpoints; zero disables throttling.
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// DashboardCacheTTL bounds staleness of the hospital dashboard snapshot in
// Redis. Short on purpose: availability toggles should surface quickly.
var DashboardCacheTTL = 30 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BLOODLINK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 30 * 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			tokenTTL = d
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = pstrings.DedupeAndTrim(strings.Split(raw, ","))
	}
	topic := os.Getenv("KAFKA_EVENTS_TOPIC")
	if topic == "" {
		topic = "bloodlink.events"
	}

	authRateLimit := 20
	if raw := os.Getenv("AUTH_RATE_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute
	if raw := os.Getenv("AUTH_RATE_WINDOW"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			authRateWindow = d
		}
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,

		AuthRateLimit:  authRateLimit,
		AuthRateWindow: authRateWindow,
	}
}

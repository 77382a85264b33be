package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accounthandler "bloodlink/internal/account/handler"
	"bloodlink/internal/account/jwt"
	accountmetrics "bloodlink/internal/account/metrics"
	accountservice "bloodlink/internal/account/service"
	accountstore "bloodlink/internal/account/store"
	donorhandler "bloodlink/internal/donor/handler"
	donormetrics "bloodlink/internal/donor/metrics"
	donorservice "bloodlink/internal/donor/service"
	donorstore "bloodlink/internal/donor/store"
	hospitalcache "bloodlink/internal/hospital/cache"
	hospitalhandler "bloodlink/internal/hospital/handler"
	hospitalmetrics "bloodlink/internal/hospital/metrics"
	hospitalservice "bloodlink/internal/hospital/service"
	hospitalstore "bloodlink/internal/hospital/store/hospital"
	requeststore "bloodlink/internal/hospital/store/request"
	"bloodlink/internal/matching"
	"bloodlink/internal/platform/config"
	"bloodlink/internal/platform/httpserver"
	"bloodlink/internal/platform/logger"
	"bloodlink/internal/platform/postgres"
	"bloodlink/internal/platform/redis"
	"bloodlink/internal/ratelimit"
	httptransport "bloodlink/internal/transport/http"
	"bloodlink/pkg/platform/audit/publisher"
	kafkasink "bloodlink/pkg/platform/audit/sink/kafka"
	auditmem "bloodlink/pkg/platform/audit/store/memory"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Stores: Postgres when DATABASE_URL is set, otherwise in-memory. The
	// in-memory stores exist for local development and tests; they lose
	// everything on restart.
	var (
		db        *sql.DB
		accounts  accountservice.AccountStore
		donors    donorStore
		hospitals hospitalservice.HospitalStore
		requests  hospitalservice.RequestStore
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		accounts = accountstore.NewPostgres(db)
		donors = donorstore.NewPostgres(db)
		hospitals = hospitalstore.NewPostgres(db)
		requests = requeststore.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		accounts = accountstore.NewInMemory()
		donors = donorstore.NewInMemory()
		hospitals = hospitalstore.NewInMemory()
		requests = requeststore.NewInMemory()
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit trail: events land in the store synchronously and fan out to
	// Kafka when brokers are configured.
	publisherOpts := []publisher.Option{publisher.WithAsyncBuffer(256)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := kafkasink.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditPublisher := publisher.NewPublisher(auditmem.NewInMemoryStore(), publisherOpts...)
	defer auditPublisher.Close()

	tokens := jwt.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	donorSvc := donorservice.New(donors,
		donorservice.WithLogger(log),
		donorservice.WithAuditPublisher(auditPublisher),
		donorservice.WithMetrics(donormetrics.New()),
	)
	matcher := matching.New(donors, matching.WithLogger(log))

	hospitalOpts := []hospitalservice.Option{
		hospitalservice.WithLogger(log),
		hospitalservice.WithAuditPublisher(auditPublisher),
		hospitalservice.WithMetrics(hospitalmetrics.New()),
	}
	if redisClient != nil {
		hospitalOpts = append(hospitalOpts, hospitalservice.WithDashboardCache(
			hospitalcache.NewRedis(redisClient), config.DashboardCacheTTL,
		))
	}
	hospitalSvc := hospitalservice.New(hospitals, requests, matcher, donors, hospitalOpts...)

	accountOpts := []accountservice.Option{
		accountservice.WithLogger(log),
		accountservice.WithAuditPublisher(auditPublisher),
		accountservice.WithAuditLog(auditPublisher),
		accountservice.WithMetrics(accountmetrics.New()),
	}
	if db != nil {
		accountOpts = append(accountOpts, accountservice.WithTransactor(postgres.NewTxRunner(db)))
	}
	accountSvc := accountservice.New(accounts, donorSvc, hospitalSvc, tokens, accountOpts...)

	var health []httptransport.HealthChecker
	if db != nil {
		health = append(health, dbChecker{db: db})
	}
	if redisClient != nil {
		health = append(health, redisClient)
	}

	var authLimiter *ratelimit.SlidingWindow
	if cfg.AuthRateLimit > 0 {
		authLimiter = ratelimit.NewSlidingWindow(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Tokens:      tokens,
		Accounts:    accounthandler.New(accountSvc, log),
		Donors:      donorhandler.New(donorSvc, log),
		Hospitals:   hospitalhandler.New(hospitalSvc, log),
		AuthLimiter: authLimiter,
		Health:      health,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting bloodlink server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// donorStore joins the donor-facing store with the aggregation queries the
// hospital dashboard reads. Both store implementations provide all of it.
type donorStore interface {
	donorservice.DonorStore
	hospitalservice.DonorStats
}

type dbChecker struct {
	db *sql.DB
}

func (c dbChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"sbos/internal/audit"
	kafkapublisher "sbos/internal/audit/publisher/kafka"
	auditmemory "sbos/internal/audit/store/memory"
	auditpostgres "sbos/internal/audit/store/postgres"
	"sbos/internal/platform/config"
	"sbos/internal/platform/influx"
	"sbos/internal/platform/kafka"
	"sbos/internal/platform/postgres"
	"sbos/internal/platform/redis"
	"sbos/internal/policy"
	policymemory "sbos/internal/policy/store/memory"
	policypostgres "sbos/internal/policy/store/postgres"
	"sbos/internal/proxy"
	"sbos/internal/proxy/timeseries"
	"sbos/internal/ratelimit"
	"sbos/internal/ratelimit/store/bucket"
	"sbos/pkg/platform/circuit"
)

// backends holds the optional external stores. Each nil field falls back to
// an in-process implementation.
type backends struct {
	db     *sql.DB
	redis  *redis.Client
	kafka  *kgo.Client
	influx *influx.Client
}

func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{}
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.db = db
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			b.close(logger)
			return nil, err
		}
		logger.InfoContext(ctx, "postgres connected")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		b.close(logger)
		return nil, err
	}
	b.redis = rc

	if len(cfg.Kafka.Brokers) > 0 {
		kc, err := kafka.NewClient(cfg.Kafka.Brokers)
		if err != nil {
			b.close(logger)
			return nil, err
		}
		b.kafka = kc
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions); err != nil {
			b.close(logger)
			return nil, err
		}
		logger.InfoContext(ctx, "kafka audit fan-out enabled", "topic", cfg.Kafka.AuditTopic)
	}

	ic, err := influx.New(ctx, influx.Config(cfg.Influx))
	if err != nil {
		b.close(logger)
		return nil, err
	}
	b.influx = ic
	return b, nil
}

func (b *backends) policyStore() policy.Store {
	if b.db != nil {
		return policypostgres.New(b.db)
	}
	return policymemory.New()
}

func (b *backends) auditStore() audit.Store {
	if b.db != nil {
		return auditpostgres.New(b.db)
	}
	return auditmemory.NewInMemoryStore()
}

func (b *backends) bucketStore() ratelimit.BucketStore {
	if b.redis != nil {
		return bucket.NewRedis(b.redis.Client)
	}
	return bucket.New()
}

// proxyOptions attaches the InfluxDB recorder. Samples are recorded inside
// the guard's write lock, so the recorder sits behind a timeout and breaker.
func (b *backends) proxyOptions(logger *slog.Logger) ([]proxy.Option, error) {
	opts := []proxy.Option{proxy.WithLogger(logger)}
	if b.influx == nil {
		return opts, nil
	}
	rec, err := timeseries.NewGuarded(timeseries.NewInflux(b.influx.Writer),
		timeseries.WithBreaker(circuit.New("influx", circuit.WithCooldown(30*time.Second))),
		timeseries.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("time series recorder: %w", err)
	}
	return append(opts, proxy.WithRecorder(rec)), nil
}

// auditSink returns the publisher and its outbox, or nils when Kafka is off.
func (b *backends) auditSink(cfg config.Config) (*kafkapublisher.Publisher, *audit.Buffer, error) {
	if b.kafka == nil {
		return nil, nil, nil
	}
	pub, err := kafkapublisher.NewPublisher(b.kafka, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, nil, fmt.Errorf("audit publisher: %w", err)
	}
	return pub, audit.NewBuffer(cfg.Engine.AuditOutbox), nil
}

func (b *backends) close(logger *slog.Logger) {
	if b.kafka != nil {
		b.kafka.Close()
	}
	if b.influx != nil {
		b.influx.Close()
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Warn("redis close", "error", err)
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			logger.Warn("postgres close", "error", err)
		}
	}
}

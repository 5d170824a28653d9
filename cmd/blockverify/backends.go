package main

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/api/handler"
	"github.com/blockverify/certificate-api/internal/core/ports"
	"github.com/blockverify/certificate-api/internal/infrastructure/config"
	"github.com/blockverify/certificate-api/internal/infrastructure/db/memory"
	mongodb "github.com/blockverify/certificate-api/internal/infrastructure/db/mongo"
	"github.com/blockverify/certificate-api/internal/infrastructure/db/postgres"
	redisdb "github.com/blockverify/certificate-api/internal/infrastructure/db/redis"
	"github.com/blockverify/certificate-api/internal/infrastructure/storage/objectstore"
)

// backends holds the storage adapters selected by configuration.
type backends struct {
	certificates  ports.CertificateRepository
	accounts      ports.AccountRepository
	verifications ports.VerificationRepository
	sessions      ports.SessionRepository
	artifacts     ports.ArtifactStore

	checks  map[string]handler.HealthCheck
	closers []func(context.Context) error
}

func (b *backends) close(ctx context.Context, log zerolog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("failed to close backend")
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{checks: map[string]handler.HealthCheck{}}

	if err := b.openLedger(ctx, cfg, log); err != nil {
		b.close(ctx, log)
		return nil, err
	}
	if err := b.openSessions(ctx, cfg, log); err != nil {
		b.close(ctx, log)
		return nil, err
	}
	if err := b.openArtifacts(ctx, cfg, log); err != nil {
		b.close(ctx, log)
		return nil, err
	}
	return b, nil
}

func (b *backends) openLedger(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		b.closers = append(b.closers, func(ctx context.Context) error { return client.Disconnect(ctx) })
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("failed to create MongoDB indexes: %w", err)
		}
		b.certificates = mongodb.NewCertificateRepository(db)
		b.accounts = mongodb.NewAccountRepository(db)
		b.verifications = mongodb.NewVerificationRepository(db)
		b.checks["mongodb"] = func(ctx context.Context) error { return mongodb.Ping(ctx, db) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate PostgreSQL: %w", err)
		}
		b.certificates = postgres.NewCertificateRepository(db)
		b.accounts = postgres.NewAccountRepository(db)
		b.verifications = postgres.NewVerificationRepository(db)
		b.checks["postgres"] = pingSQL(db)
		log.Info().Msg("connected to PostgreSQL")

	default:
		b.certificates = memory.NewCertificateRepository()
		b.accounts = memory.NewAccountRepository()
		b.verifications = memory.NewVerificationRepository()
		log.Warn().Msg("ledger kept in memory, data is lost on restart")
	}
	return nil
}

func (b *backends) openSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.SessionDriver != config.SessionRedis {
		b.sessions = memory.NewSessionRepository()
		return nil
	}

	client, err := redisdb.Connect(ctx, redisdb.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	b.closers = append(b.closers, func(context.Context) error { return client.Close() })
	b.sessions = redisdb.NewSessionRepository(client)
	b.checks["redis"] = pingRedis(client)
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
	return nil
}

func (b *backends) openArtifacts(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.S3.Bucket == "" {
		b.artifacts = memory.NewArtifactStore()
		return nil
	}

	store, err := objectstore.New(ctx, objectstore.Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		UsePathStyle:    cfg.S3.UsePathStyle,
	})
	if err != nil {
		return fmt.Errorf("failed to configure artifact storage: %w", err)
	}
	b.artifacts = store
	b.checks["s3"] = store.Ping
	log.Info().Str("bucket", cfg.S3.Bucket).Msg("certificate documents stored in S3")
	return nil
}

func pingSQL(db *sql.DB) handler.HealthCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

func pingRedis(client *goredis.Client) handler.HealthCheck {
	return func(ctx context.Context) error { return redisdb.Ping(ctx, client) }
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockverify/certificate-api/internal/infrastructure/config"
	"github.com/blockverify/certificate-api/internal/infrastructure/db/mongo"
	"github.com/blockverify/certificate-api/internal/infrastructure/db/postgres"
	"github.com/blockverify/certificate-api/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations or create MongoDB indexes, then exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return migrate(ctx)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrate(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: serviceName, Env: cfg.Env})

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return err
		}
	case config.StorageMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage driver %q has nothing to migrate", cfg.StorageDriver)
	}

	log.Info().Str("storage", cfg.StorageDriver).Msg("schema up to date")
	return nil
}

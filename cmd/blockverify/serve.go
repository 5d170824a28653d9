package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockverify/certificate-api/internal/api"
	"github.com/blockverify/certificate-api/internal/api/metrics"
	"github.com/blockverify/certificate-api/internal/core/service"
	"github.com/blockverify/certificate-api/internal/infrastructure/config"
	"github.com/blockverify/certificate-api/internal/infrastructure/queue"
	"github.com/blockverify/certificate-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty || cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})
	log.Info().
		Str("storage", cfg.StorageDriver).
		Str("sessions", cfg.SessionDriver).
		Msg("starting application")

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}

	hashes := service.NewHashGenerator(nil)
	sessions := service.NewSessionService(b.sessions, cfg.SessionTTL, logger.Component("sessions"))
	ledger := service.NewLedgerService(b.certificates, b.artifacts, hashes, cfg.Ledger.ReviewRequired, logger.Component("ledger"))
	auth := service.NewAuthService(b.accounts, sessions, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))

	if cfg.Admin.Email != "" {
		if err := auth.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			b.close(context.Background(), log)
			return err
		}
	}

	// The audit workers outlive the signal so queued events are drained
	// after the server stops accepting requests.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	dispatcher := queue.NewDispatcher(cfg.Verify.AuditWorkers, b.verifications, metrics.AuditObserver{}, logger.Component("audit"))
	dispatcher.Start(auditCtx)

	verifier := service.NewVerificationService(ledger, hashes, dispatcher, cfg.Verify.Latency, logger.Component("verifier"))

	e := api.NewRouter(api.Dependencies{
		Auth:            auth,
		Sessions:        sessions,
		Ledger:          ledger,
		Verifier:        verifier,
		HealthChecks:    b.checks,
		JWTSecret:       cfg.JWTSecret,
		UploadMaxBytes:  cfg.Ledger.UploadMaxBytes,
		VerifyRateLimit: cfg.Verify.RateLimit,
		VerifyRateBurst: cfg.Verify.RateBurst,
		Logger:          log,
	})

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errChan:
		log.Error().Err(serveErr).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	stopAudit()
	dispatcher.Wait()
	b.close(shutdownCtx, log)

	log.Info().Msg("application stopped")
	return serveErr
}

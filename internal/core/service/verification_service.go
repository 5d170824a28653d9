package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

// CertificateFinder is the ledger lookup the simulator depends on.
type CertificateFinder interface {
	FindByHash(ctx context.Context, hash string) (*domain.Certificate, error)
}

// AuditRecorder receives a copy of every verification outcome.
type AuditRecorder interface {
	Record(event domain.VerificationEvent)
}

type verificationService struct {
	ledger  CertificateFinder
	hashes  *HashGenerator
	audit   AuditRecorder
	latency time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewVerificationService returns the verification simulator. latency adds a
// simulated network delay to every lookup; audit may be nil.
func NewVerificationService(
	ledger CertificateFinder,
	hashes *HashGenerator,
	audit AuditRecorder,
	latency time.Duration,
	logger zerolog.Logger,
) ports.VerificationService {
	if hashes == nil {
		hashes = NewHashGenerator(nil)
	}
	return &verificationService{
		ledger:  ledger,
		hashes:  hashes,
		audit:   audit,
		latency: latency,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Verify looks hash up in the ledger. The transaction id and risk score are
// fabricated on every call whatever the outcome.
func (s *verificationService) Verify(ctx context.Context, hash string) (*domain.VerificationResult, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	cert, err := s.ledger.FindByHash(ctx, hash)
	if err != nil && !errors.Is(err, domain.ErrCertificateNotFound) {
		return nil, fmt.Errorf("verify: %w", err)
	}

	txID, err := s.hashes.TxID()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	score, err := s.hashes.RiskScore()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	result := &domain.VerificationResult{
		IsValid:        cert != nil,
		Certificate:    cert,
		BlockchainTxID: txID,
		AIRiskScore:    score,
		VerifiedAt:     s.now(),
	}

	if s.audit != nil {
		s.audit.Record(domain.VerificationEvent{
			Hash:           hash,
			Valid:          result.IsValid,
			BlockchainTxID: result.BlockchainTxID,
			AIRiskScore:    result.AIRiskScore,
			VerifiedAt:     result.VerifiedAt,
			RemoteAddr:     ports.RemoteAddr(ctx),
		})
	}

	s.logger.Debug().Str("hash", hash).Bool("valid", result.IsValid).Msg("certificate verified")
	return result, nil
}

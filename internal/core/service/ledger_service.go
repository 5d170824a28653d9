package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

const (
	maxHashAttempts   = 3
	maxStatusAttempts = 3
	flaggedRatio      = 0.02
)

// LedgerService implements the certificate ledger.
type LedgerService struct {
	repo           ports.CertificateRepository
	artifacts      ports.ArtifactStore
	hashes         *HashGenerator
	reviewRequired bool
	logger         zerolog.Logger
	now            func() time.Time
}

// NewLedgerService returns a ledger. When reviewRequired is set new
// certificates start as pending, otherwise as verified.
func NewLedgerService(
	repo ports.CertificateRepository,
	artifacts ports.ArtifactStore,
	hashes *HashGenerator,
	reviewRequired bool,
	logger zerolog.Logger,
) *LedgerService {
	if hashes == nil {
		hashes = NewHashGenerator(nil)
	}
	return &LedgerService{
		repo:           repo,
		artifacts:      artifacts,
		hashes:         hashes,
		reviewRequired: reviewRequired,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns the whole ledger in insertion order. Never nil.
func (s *LedgerService) ListAll(ctx context.Context) ([]*domain.Certificate, error) {
	certs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	if certs == nil {
		certs = []*domain.Certificate{}
	}
	return certs, nil
}

// Append stores a new certificate under a freshly generated hash. If an
// idempotency key is provided and already seen, the earlier certificate is
// returned without side effects. Storage enforces key uniqueness, so of two
// concurrent uploads with one key the loser replays the winner.
func (s *LedgerService) Append(ctx context.Context, in ports.AppendCertificateInput) (*ports.AppendResult, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Issuer) == "" {
		return nil, fmt.Errorf("append certificate: %w: name and issuer are required", domain.ErrInvalidCertificate)
	}

	if in.IdempotencyKey != "" {
		res, err := s.replay(ctx, in.IdempotencyKey)
		if res != nil || err != nil {
			return res, err
		}
	}

	status := domain.StatusVerified
	if s.reviewRequired {
		status = domain.StatusPending
	}

	cert := &domain.Certificate{
		Name:           strings.TrimSpace(in.Name),
		Issuer:         strings.TrimSpace(in.Issuer),
		IssueDate:      in.IssueDate,
		Description:    in.Description,
		Status:         status,
		UploadDate:     s.now(),
		IdempotencyKey: in.IdempotencyKey,
	}

	var err error
	if len(in.Artifact) > 0 {
		err = s.appendWithArtifact(ctx, cert, in.Artifact, in.ArtifactContentType)
	} else {
		err = s.appendWithRandomHash(ctx, cert)
	}
	if err != nil && in.IdempotencyKey != "" &&
		(errors.Is(err, domain.ErrDuplicateIdempotencyKey) || errors.Is(err, domain.ErrDuplicateCertificate)) {
		res, replayErr := s.replay(ctx, in.IdempotencyKey)
		if replayErr != nil {
			return nil, replayErr
		}
		if res != nil {
			return res, nil
		}
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to append certificate")
		return nil, err
	}

	txID, err := s.hashes.TxID()
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("hash", cert.Hash).Str("status", string(cert.Status)).Msg("certificate appended")
	return &ports.AppendResult{Certificate: cert, TxID: txID}, nil
}

// replay returns the certificate stored under key, or nil when the key is
// unused.
func (s *LedgerService) replay(ctx context.Context, key string) (*ports.AppendResult, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrCertificateNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("append certificate: idempotency lookup: %w", err)
	}

	s.logger.Info().Str("idempotency_key", key).Str("hash", existing.Hash).Msg("idempotent replay")
	txID, err := s.hashes.TxID()
	if err != nil {
		return nil, err
	}
	return &ports.AppendResult{Certificate: existing, TxID: txID, AlreadyExisted: true}, nil
}

// appendWithArtifact derives the hash from the document, so a duplicate hash
// means the same document is already registered.
func (s *LedgerService) appendWithArtifact(ctx context.Context, cert *domain.Certificate, artifact []byte, contentType string) error {
	cert.Hash = s.hashes.ContentHash(artifact)

	if _, err := s.repo.FindByHash(ctx, cert.Hash); err == nil {
		return fmt.Errorf("append certificate: %w", domain.ErrDuplicateCertificate)
	} else if !errors.Is(err, domain.ErrCertificateNotFound) {
		return fmt.Errorf("append certificate: %w", err)
	}

	if s.artifacts != nil {
		key := artifactKey(cert.Hash)
		if err := s.artifacts.Put(ctx, key, contentType, artifact); err != nil {
			return fmt.Errorf("append certificate: store artifact: %w", err)
		}
		cert.ArtifactKey = key
	}

	err := s.repo.Insert(ctx, cert)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrDuplicateHash):
		return fmt.Errorf("append certificate: %w", domain.ErrDuplicateCertificate)
	case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
		return fmt.Errorf("append certificate: %w", err)
	}

	if cert.ArtifactKey != "" {
		s.discardArtifact(ctx, cert.Hash, cert.ArtifactKey)
	}
	return fmt.Errorf("append certificate: %w", err)
}

// discardArtifact removes a document whose certificate failed to insert.
// The key is content addressed, so it stays when another record already owns
// the same hash.
func (s *LedgerService) discardArtifact(ctx context.Context, hash, key string) {
	if _, err := s.repo.FindByHash(ctx, hash); !errors.Is(err, domain.ErrCertificateNotFound) {
		return
	}
	if err := s.artifacts.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to remove orphaned document")
	}
}

func (s *LedgerService) appendWithRandomHash(ctx context.Context, cert *domain.Certificate) error {
	for attempt := 1; attempt <= maxHashAttempts; attempt++ {
		hash, err := s.hashes.Random()
		if err != nil {
			return fmt.Errorf("append certificate: %w", err)
		}
		cert.Hash = hash

		err = s.repo.Insert(ctx, cert)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateHash) {
			return fmt.Errorf("append certificate: %w", err)
		}
		s.logger.Warn().Str("hash", hash).Int("attempt", attempt).Msg("hash collision, regenerating")
	}
	return fmt.Errorf("append certificate: %w", domain.ErrDuplicateHash)
}

func (s *LedgerService) FindByHash(ctx context.Context, hash string) (*domain.Certificate, error) {
	cert, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return cert, nil
}

// SetStatus moves the certificate identified by hash to status. Concurrent
// writers are detected through the record version and the update is retried
// against the fresh state.
func (s *LedgerService) SetStatus(ctx context.Context, hash string, status domain.CertificateStatus) (*domain.Certificate, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("set status: %w (unknown status %q)", domain.ErrInvalidTransition, status)
	}

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		cert, err := s.repo.FindByHash(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("set status: %w", err)
		}
		if !cert.Status.CanTransitionTo(status) {
			return nil, fmt.Errorf("set status: %w (from %s to %s)", domain.ErrInvalidTransition, cert.Status, status)
		}
		if cert.Status == status {
			return cert, nil
		}

		err = s.repo.UpdateStatus(ctx, hash, status, cert.Version)
		if err == nil {
			s.logger.Info().Str("hash", hash).Str("from", string(cert.Status)).Str("to", string(status)).Msg("certificate status changed")
			cert.Status = status
			cert.Version++
			return cert, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("set status: %w", err)
		}
		s.logger.Debug().Str("hash", hash).Int("attempt", attempt).Msg("status update conflict, retrying")
	}
	return nil, fmt.Errorf("set status: %w", domain.ErrVersionConflict)
}

// Summary counts the ledger by status and returns the most recent
// certificates, newest first.
func (s *LedgerService) Summary(ctx context.Context, recent int) (*ports.LedgerSummary, error) {
	certs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	sum := &ports.LedgerSummary{Total: len(certs), Recent: []*domain.Certificate{}}
	for _, c := range certs {
		switch c.Status {
		case domain.StatusVerified:
			sum.Verified++
		case domain.StatusPending:
			sum.Pending++
		case domain.StatusRejected:
			sum.Rejected++
		}
	}
	sum.Flagged = int(float64(sum.Total) * flaggedRatio)

	for i := len(certs) - 1; i >= 0 && len(sum.Recent) < recent; i-- {
		sum.Recent = append(sum.Recent, certs[i])
	}
	return sum, nil
}

// Document returns the stored document of the certificate identified by hash.
// Certificates registered without a file yield domain.ErrArtifactNotFound.
func (s *LedgerService) Document(ctx context.Context, hash string) ([]byte, string, error) {
	cert, err := s.FindByHash(ctx, hash)
	if err != nil {
		return nil, "", err
	}
	if cert.ArtifactKey == "" || s.artifacts == nil {
		return nil, "", domain.ErrArtifactNotFound
	}

	data, contentType, err := s.artifacts.Get(ctx, cert.ArtifactKey)
	if err != nil {
		return nil, "", fmt.Errorf("load document: %w", err)
	}
	return data, contentType, nil
}

func artifactKey(hash string) string {
	return "certificates/" + hash + ".pdf"
}

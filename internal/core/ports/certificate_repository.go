package ports

import (
	"context"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// CertificateRepository defines persistence operations for the ledger.
type CertificateRepository interface {
	// Insert appends c, assigning Seq and setting Version to 1.
	// Returns domain.ErrDuplicateIdempotencyKey when a non-empty
	// c.IdempotencyKey is already present, otherwise domain.ErrDuplicateHash
	// when c.Hash is.
	Insert(ctx context.Context, c *domain.Certificate) error
	// List returns every certificate in insertion order.
	List(ctx context.Context) ([]*domain.Certificate, error)
	FindByHash(ctx context.Context, hash string) (*domain.Certificate, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Certificate, error)
	// UpdateStatus sets the status of the record whose version equals
	// expectedVersion and bumps the version. Returns
	// domain.ErrCertificateNotFound or domain.ErrVersionConflict.
	UpdateStatus(ctx context.Context, hash string, status domain.CertificateStatus, expectedVersion int64) error
}

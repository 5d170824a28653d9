package memory

import (
	"context"
	"sync"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// CertificateRepository is an append-only slice indexed by hash.
type CertificateRepository struct {
	mu      sync.RWMutex
	certs   []*domain.Certificate
	byHash  map[string]int
	byIdem  map[string]int
	nextSeq int64
}

func NewCertificateRepository() *CertificateRepository {
	return &CertificateRepository{
		byHash: make(map[string]int),
		byIdem: make(map[string]int),
	}
}

func (r *CertificateRepository) Insert(_ context.Context, c *domain.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.IdempotencyKey != "" {
		if _, exists := r.byIdem[c.IdempotencyKey]; exists {
			return domain.ErrDuplicateIdempotencyKey
		}
	}
	if _, exists := r.byHash[c.Hash]; exists {
		return domain.ErrDuplicateHash
	}

	r.nextSeq++
	c.Seq = r.nextSeq
	c.Version = 1

	clone := *c
	r.certs = append(r.certs, &clone)
	idx := len(r.certs) - 1
	r.byHash[c.Hash] = idx
	if c.IdempotencyKey != "" {
		r.byIdem[c.IdempotencyKey] = idx
	}
	return nil
}

func (r *CertificateRepository) List(_ context.Context) ([]*domain.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Certificate, len(r.certs))
	for i, c := range r.certs {
		clone := *c
		out[i] = &clone
	}
	return out, nil
}

func (r *CertificateRepository) FindByHash(_ context.Context, hash string) (*domain.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byHash[hash]
	if !ok {
		return nil, domain.ErrCertificateNotFound
	}
	clone := *r.certs[idx]
	return &clone, nil
}

func (r *CertificateRepository) FindByIdempotencyKey(_ context.Context, key string) (*domain.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byIdem[key]
	if !ok {
		return nil, domain.ErrCertificateNotFound
	}
	clone := *r.certs[idx]
	return &clone, nil
}

func (r *CertificateRepository) UpdateStatus(_ context.Context, hash string, status domain.CertificateStatus, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byHash[hash]
	if !ok {
		return domain.ErrCertificateNotFound
	}
	c := r.certs[idx]
	if c.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	c.Status = status
	c.Version++
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

const (
	certificateColumns = `hash, name, issuer, issue_date, description, status, upload_date, artifact_key, idempotency_key, seq, version`

	idempotencyKeyConstraint = "certificates_idempotency_key_key"
)

// CertificateRepository implements ports.CertificateRepository on PostgreSQL.
// The BIGSERIAL seq column keeps insertion order.
type CertificateRepository struct {
	db DBTX
}

func NewCertificateRepository(db DBTX) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) Insert(ctx context.Context, c *domain.Certificate) error {
	query := `INSERT INTO certificates (hash, name, issuer, issue_date, description, status, upload_date, artifact_key, idempotency_key, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
		RETURNING seq`

	var seq int64
	err := r.db.QueryRowContext(ctx, query,
		c.Hash, c.Name, c.Issuer, c.IssueDate.UTC(), c.Description, string(c.Status),
		c.UploadDate.UTC(), c.ArtifactKey, nullString(c.IdempotencyKey),
	).Scan(&seq)
	if err != nil {
		if violatedConstraint(err) == idempotencyKeyConstraint {
			return domain.ErrDuplicateIdempotencyKey
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateHash
		}
		return fmt.Errorf("db error: %w", err)
	}

	c.Seq = seq
	c.Version = 1
	return nil
}

func (r *CertificateRepository) List(ctx context.Context) ([]*domain.Certificate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+certificateColumns+` FROM certificates ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	certs := []*domain.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return certs, nil
}

func (r *CertificateRepository) FindByHash(ctx context.Context, hash string) (*domain.Certificate, error) {
	return r.findOne(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE hash = $1`, hash)
}

func (r *CertificateRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Certificate, error) {
	return r.findOne(ctx, `SELECT `+certificateColumns+` FROM certificates WHERE idempotency_key = $1`, key)
}

func (r *CertificateRepository) UpdateStatus(ctx context.Context, hash string, status domain.CertificateStatus, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE certificates SET status = $1, version = version + 1 WHERE hash = $2 AND version = $3`,
		string(status), hash, expectedVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM certificates WHERE hash = $1)`, hash).Scan(&exists); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return domain.ErrCertificateNotFound
	}
	return domain.ErrVersionConflict
}

func (r *CertificateRepository) findOne(ctx context.Context, query string, arg any) (*domain.Certificate, error) {
	c, err := scanCertificate(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*domain.Certificate, error) {
	var (
		c           domain.Certificate
		status      string
		idempotency sql.NullString
	)
	err := row.Scan(&c.Hash, &c.Name, &c.Issuer, &c.IssueDate, &c.Description, &status,
		&c.UploadDate, &c.ArtifactKey, &idempotency, &c.Seq, &c.Version)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CertificateStatus(status)
	c.IdempotencyKey = idempotency.String
	c.IssueDate = c.IssueDate.UTC()
	c.UploadDate = c.UploadDate.UTC()
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

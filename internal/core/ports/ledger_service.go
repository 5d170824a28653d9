package ports

import (
	"context"
	"time"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// AppendCertificateInput carries the data of a certificate upload.
type AppendCertificateInput struct {
	Name        string
	Issuer      string
	IssueDate   time.Time
	Description string
	// Artifact is the uploaded document. When present the certificate hash
	// is derived from its content.
	Artifact            []byte
	ArtifactContentType string
	IdempotencyKey      string
}

// AppendResult is returned after a certificate has been appended.
type AppendResult struct {
	Certificate *domain.Certificate
	// TxID is the simulated anchoring transaction id.
	TxID string
	// AlreadyExisted is true when the Idempotency-Key matched an earlier upload.
	AlreadyExisted bool
}

// LedgerSummary aggregates the ledger for dashboards.
type LedgerSummary struct {
	Total    int
	Verified int
	Pending  int
	Rejected int
	Flagged  int
	Recent   []*domain.Certificate
}

// LedgerService defines the certificate ledger use cases.
type LedgerService interface {
	ListAll(ctx context.Context) ([]*domain.Certificate, error)
	Append(ctx context.Context, input AppendCertificateInput) (*AppendResult, error)
	FindByHash(ctx context.Context, hash string) (*domain.Certificate, error)
	SetStatus(ctx context.Context, hash string, status domain.CertificateStatus) (*domain.Certificate, error)
	Summary(ctx context.Context, recent int) (*LedgerSummary, error)
	// Document returns the uploaded file of a certificate and its content type.
	Document(ctx context.Context, hash string) ([]byte, string, error)
}

package ports

import (
	"context"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// VerificationRepository persists the verification audit trail.
type VerificationRepository interface {
	InsertEvent(ctx context.Context, event *domain.VerificationEvent) error
}

package ports

import (
	"context"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// SessionService holds the signed-in identity of each session.
type SessionService interface {
	SetSession(ctx context.Context, sid string, user domain.User) error
	// GetSession returns nil without error when the session is absent or its
	// stored record cannot be decoded.
	GetSession(ctx context.Context, sid string) (*domain.User, error)
	ClearSession(ctx context.Context, sid string) error
	IsAuthenticated(ctx context.Context, sid string) bool
	IsAdmin(ctx context.Context, sid string) bool
}

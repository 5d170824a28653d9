package ports

import (
	"context"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// AccountRepository defines persistence for login accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Update rewrites name, email, role and password hash of the account with
	// the given ID. Returns domain.ErrUserExists when the new email is taken.
	Update(ctx context.Context, account *domain.Account) error
}

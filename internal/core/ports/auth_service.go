package ports

import (
	"context"
	"time"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// AuthResult describes a freshly opened session.
type AuthResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	User      domain.User
}

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*AuthResult, error)
	// Login opens a session. role is the role the caller asks for; empty
	// means the account's own role.
	Login(ctx context.Context, email, password, role string) (*AuthResult, error)
	Logout(ctx context.Context, sid string) error
	UpdateProfile(ctx context.Context, sid, name, email string) (*domain.User, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

// AuthService implements signup, login, logout and profile edits. Every
// successful signup or login opens a new session whose id travels in the
// signed token.
type AuthService struct {
	accounts  ports.AccountRepository
	sessions  ports.SessionService
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	sessions ports.SessionService,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Signup creates a user-role account and signs it in.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.createAccount(ctx, name, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", account.Email).Msg("account created")
	return s.openSession(ctx, domain.User{AccountID: account.ID, Email: account.Email, Name: account.Name, Role: account.Role})
}

// Login checks the password and opens a session. Asking for the admin role
// with a non-admin account fails with ErrInsufficientRole; an admin asking
// for the user role gets a user session.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role != "" && !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sessionRole := account.Role
	switch {
	case role == domain.RoleAdmin && account.Role != domain.RoleAdmin:
		return nil, domain.ErrInsufficientRole
	case role == domain.RoleUser:
		sessionRole = domain.RoleUser
	}

	return s.openSession(ctx, domain.User{AccountID: account.ID, Email: account.Email, Name: account.Name, Role: sessionRole})
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.sessions.ClearSession(ctx, sid)
}

// UpdateProfile changes the display name and email of the signed-in user,
// both on the account and on the session record. The account is resolved by
// the id held in the session, never by its email, since other sessions of
// the same account may carry an email that has since changed.
func (s *AuthService) UpdateProfile(ctx context.Context, sid, name, email string) (*domain.User, error) {
	current, err := s.sessions.GetSession(ctx, sid)
	if err != nil {
		return nil, err
	}
	if current == nil || current.AccountID == "" {
		return nil, domain.ErrAbsentSession
	}

	account, err := s.accounts.FindByID(ctx, current.AccountID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	updated := domain.User{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      current.Role,
	}
	if n := strings.TrimSpace(name); n != "" {
		updated.Name = n
	}
	if e := normalizeEmail(email); e != "" {
		updated.Email = e
	}

	account.Name = updated.Name
	account.Email = updated.Email
	account.UpdatedAt = time.Now().UTC()
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if err := s.sessions.SetSession(ctx, sid, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist
// yet, or promotes an existing account with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.ErrInvalidCredentials
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin {
			return nil
		}
		existing.Role = domain.RoleAdmin
		existing.UpdatedAt = time.Now().UTC()
		if err := s.accounts.Update(ctx, existing); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		s.logger.Info().Str("email", email).Msg("account promoted to admin")
		return nil
	case errors.Is(err, domain.ErrUserNotFound):
		if _, err := s.createAccount(ctx, name, email, password, domain.RoleAdmin); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		s.logger.Info().Str("email", email).Msg("admin account created")
		return nil
	default:
		return fmt.Errorf("ensure admin: %w", err)
	}
}

func (s *AuthService) createAccount(ctx context.Context, name, email, password, role string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.accounts.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *AuthService) openSession(ctx context.Context, user domain.User) (*ports.AuthResult, error) {
	sid := uuid.NewString()
	if err := s.sessions.SetSession(ctx, sid, user); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token, err := s.generateToken(sid, user, expiresAt)
	if err != nil {
		_ = s.sessions.ClearSession(ctx, sid)
		return nil, err
	}

	return &ports.AuthResult{Token: token, SessionID: sid, ExpiresAt: expiresAt.UTC(), User: user}, nil
}

func (s *AuthService) generateToken(sid string, user domain.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid":   sid,
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

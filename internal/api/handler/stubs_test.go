package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/api/middleware"
	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func signIn(c echo.Context, sid string, user *domain.User) {
	c.Set(middleware.KeySessionID, sid)
	c.Set(middleware.KeyUser, user)
	c.Set(middleware.KeyRole, user.Role)
}

type stubAuthService struct {
	signupFn        func(ctx context.Context, name, email, password string) (*ports.AuthResult, error)
	loginFn         func(ctx context.Context, email, password, role string) (*ports.AuthResult, error)
	logoutFn        func(ctx context.Context, sid string) error
	updateProfileFn func(ctx context.Context, sid, name, email string) (*domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	return s.signupFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password, role)
}

func (s *stubAuthService) Logout(ctx context.Context, sid string) error {
	return s.logoutFn(ctx, sid)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, sid, name, email string) (*domain.User, error) {
	return s.updateProfileFn(ctx, sid, name, email)
}

type stubSessionService struct {
	users map[string]*domain.User
}

func (s *stubSessionService) SetSession(_ context.Context, sid string, user domain.User) error {
	s.users[sid] = &user
	return nil
}

func (s *stubSessionService) GetSession(_ context.Context, sid string) (*domain.User, error) {
	return s.users[sid], nil
}

func (s *stubSessionService) ClearSession(_ context.Context, sid string) error {
	delete(s.users, sid)
	return nil
}

func (s *stubSessionService) IsAuthenticated(_ context.Context, sid string) bool {
	return s.users[sid] != nil
}

func (s *stubSessionService) IsAdmin(_ context.Context, sid string) bool {
	return s.users[sid].IsAdmin()
}

type stubLedgerService struct {
	listFn      func(ctx context.Context) ([]*domain.Certificate, error)
	appendFn    func(ctx context.Context, in ports.AppendCertificateInput) (*ports.AppendResult, error)
	findFn      func(ctx context.Context, hash string) (*domain.Certificate, error)
	setStatusFn func(ctx context.Context, hash string, status domain.CertificateStatus) (*domain.Certificate, error)
	summaryFn   func(ctx context.Context, recent int) (*ports.LedgerSummary, error)
	documentFn  func(ctx context.Context, hash string) ([]byte, string, error)
}

func (s *stubLedgerService) ListAll(ctx context.Context) ([]*domain.Certificate, error) {
	return s.listFn(ctx)
}

func (s *stubLedgerService) Append(ctx context.Context, in ports.AppendCertificateInput) (*ports.AppendResult, error) {
	return s.appendFn(ctx, in)
}

func (s *stubLedgerService) FindByHash(ctx context.Context, hash string) (*domain.Certificate, error) {
	return s.findFn(ctx, hash)
}

func (s *stubLedgerService) SetStatus(ctx context.Context, hash string, status domain.CertificateStatus) (*domain.Certificate, error) {
	return s.setStatusFn(ctx, hash, status)
}

func (s *stubLedgerService) Summary(ctx context.Context, recent int) (*ports.LedgerSummary, error) {
	return s.summaryFn(ctx, recent)
}

func (s *stubLedgerService) Document(ctx context.Context, hash string) ([]byte, string, error) {
	return s.documentFn(ctx, hash)
}

type stubVerifier struct {
	verifyFn func(ctx context.Context, hash string) (*domain.VerificationResult, error)
}

func (s *stubVerifier) Verify(ctx context.Context, hash string) (*domain.VerificationResult, error) {
	return s.verifyFn(ctx, hash)
}

func sampleCertificate(hash string) *domain.Certificate {
	return &domain.Certificate{
		Hash:       hash,
		Name:       "BSc Computer Science",
		Issuer:     "MIT",
		IssueDate:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusVerified,
		UploadDate: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

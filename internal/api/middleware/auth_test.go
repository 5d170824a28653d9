package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

type stubSessions struct {
	records map[string]*domain.User
	err     error
}

func (s *stubSessions) SetSession(_ context.Context, sid string, user domain.User) error {
	s.records[sid] = &user
	return nil
}

func (s *stubSessions) GetSession(_ context.Context, sid string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records[sid], nil
}

func (s *stubSessions) ClearSession(_ context.Context, sid string) error {
	delete(s.records, sid)
	return nil
}

func (s *stubSessions) IsAuthenticated(ctx context.Context, sid string) bool {
	u, _ := s.GetSession(ctx, sid)
	return u != nil
}

func (s *stubSessions) IsAdmin(ctx context.Context, sid string) bool {
	u, _ := s.GetSession(ctx, sid)
	return u.IsAdmin()
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newSessions() *stubSessions {
	return &stubSessions{records: map[string]*domain.User{
		"sid-admin": {Email: "root@blockverify.io", Name: "root", Role: domain.RoleAdmin},
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", jwt.MapClaims{"sid": "sid-admin"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret", newSessions())(func(c echo.Context) error {
		called = true
		if c.Get(KeySessionID) != "sid-admin" {
			t.Fatalf("sid not set")
		}
		if c.Get(KeyRole) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		user, _ := c.Get(KeyUser).(*domain.User)
		if user == nil || user.Email != "root@blockverify.io" {
			t.Fatalf("user not set: %+v", user)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "missing header", header: "", wantErr: errMissingHeader},
		{name: "not bearer", header: "Basic abc", wantErr: errInvalidHeader},
		{name: "bad signature", header: "Bearer " + signToken(t, "other", jwt.MapClaims{"sid": "sid-admin"}), wantErr: errInvalidToken},
		{name: "no sid claim", header: "Bearer " + signToken(t, "secret", jwt.MapClaims{"role": "admin"}), wantErr: errInvalidToken},
		{name: "cleared session", header: "Bearer " + signToken(t, "secret", jwt.MapClaims{"sid": "sid-gone"}), wantErr: domain.ErrAbsentSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := Auth("secret", newSessions())(func(c echo.Context) error {
				t.Fatalf("next must not be called")
				return nil
			})(c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", jwt.MapClaims{"sid": "sid-gone"}))
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := OptionalAuth("secret", newSessions())(func(c echo.Context) error {
		called = true
		if c.Get(KeyUser) != nil {
			t.Fatalf("user must not be set")
		}
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestOptionalAuth_StorageErrorPropagates(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", jwt.MapClaims{"sid": "sid-admin"}))
	c := e.NewContext(req, httptest.NewRecorder())

	sessions := newSessions()
	sessions.err = errors.New("redis down")

	err := OptionalAuth("secret", sessions)(func(c echo.Context) error { return nil })(c)
	if err == nil {
		t.Fatalf("expected storage error")
	}
}

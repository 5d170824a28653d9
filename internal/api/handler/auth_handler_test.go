package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
			if name != "Alice" || email != "alice@example.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s %s", name, email, password)
			}
			return &ports.AuthResult{
				Token:     "token123",
				SessionID: "sid-1",
				ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
				User:      domain.User{Email: email, Name: name, Role: domain.RoleUser},
			}, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/signup", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`), rec)

	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.User.Role != domain.RoleUser || resp.User.Name != "Alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.ExpiresAt != "2030-01-01T00:00:00Z" {
		t.Fatalf("unexpected expires_at: %s", resp.ExpiresAt)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	for _, body := range []string{
		"not-json",
		`{"name":"Alice","email":"not-an-email","password":"secret1"}`,
		`{"email":"alice@example.com","password":"secret1"}`,
		`{"name":"Alice","email":"alice@example.com","password":"123"}`,
	} {
		c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/signup", body), httptest.NewRecorder())
		err := handler.Signup(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, nil)

	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/signup", `{"name":"Bob","email":"bob@example.com","password":"secret1"}`), httptest.NewRecorder())
	if err := handler.Signup(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_PassesRequestedRole(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
			if role != domain.RoleAdmin {
				t.Fatalf("expected admin role, got %q", role)
			}
			return &ports.AuthResult{Token: "t", User: domain.User{Email: email, Name: "root", Role: domain.RoleAdmin}}, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"root@example.com","password":"pw","role":"admin"}`), rec)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid credentials", domain.ErrInvalidCredentials},
		{"not admin", domain.ErrInsufficientRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			stub := &stubAuthService{
				loginFn: func(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
					return nil, tt.err
				},
			}
			c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw"}`), httptest.NewRecorder())
			if err := NewAuthHandler(stub, nil).Login(c); !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestAuthHandler_Login_UnknownRole(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password, role string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c := e.NewContext(jsonRequest(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"pw","role":"root"}`), httptest.NewRecorder())

	err := NewAuthHandler(stub, nil).Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	var cleared string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, sid string) error {
			cleared = sid
			return nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), rec)
	signIn(c, "sid-7", &domain.User{Email: "a@example.com", Role: domain.RoleUser})

	if err := NewAuthHandler(stub, nil).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || cleared != "sid-7" {
		t.Fatalf("unexpected result: code=%d cleared=%q", rec.Code, cleared)
	}
}

func TestAuthHandler_Session(t *testing.T) {
	sessions := &stubSessionService{users: map[string]*domain.User{
		"sid-admin": {Email: "root@example.com", Name: "root", Role: domain.RoleAdmin},
	}}
	handler := NewAuthHandler(&stubAuthService{}, sessions)

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/v1/session", nil), rec)
		if err := handler.Session(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		var resp sessionResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Authenticated || resp.IsAdmin || resp.User != nil {
			t.Fatalf("expected anonymous session, got %+v", resp)
		}
	})

	t.Run("admin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/v1/session", nil), rec)
		signIn(c, "sid-admin", sessions.users["sid-admin"])
		if err := handler.Session(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		var resp sessionResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if !resp.Authenticated || !resp.IsAdmin || resp.User == nil || resp.User.Email != "root@example.com" {
			t.Fatalf("unexpected session: %+v", resp)
		}
	})
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		updateProfileFn: func(ctx context.Context, sid, name, email string) (*domain.User, error) {
			if sid != "sid-1" || name != "Alice B." {
				t.Fatalf("unexpected args: %s %s", sid, name)
			}
			return &domain.User{Email: "alice@example.com", Name: name, Role: domain.RoleUser}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/v1/profile", `{"name":"Alice B."}`), rec)
	signIn(c, "sid-1", &domain.User{Email: "alice@example.com", Name: "Alice", Role: domain.RoleUser})

	if err := NewAuthHandler(stub, nil).UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp userResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Name != "Alice B." {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestAuthHandler_Profile_NoSession(t *testing.T) {
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/v1/profile", nil), httptest.NewRecorder())
	if err := NewAuthHandler(&stubAuthService{}, nil).Profile(c); !errors.Is(err, domain.ErrAbsentSession) {
		t.Fatalf("expected ErrAbsentSession, got %v", err)
	}
}

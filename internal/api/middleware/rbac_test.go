package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

func TestRBAC(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantErr  error
		wantNext bool
	}{
		{name: "admin on admin route", role: domain.RoleAdmin, allowed: []string{domain.RoleAdmin}, wantNext: true},
		{name: "user on shared route", role: domain.RoleUser, allowed: []string{domain.RoleAdmin, domain.RoleUser}, wantNext: true},
		{name: "user on admin route", role: domain.RoleUser, allowed: []string{domain.RoleAdmin}, wantErr: domain.ErrInsufficientRole},
		{name: "no session", allowed: []string{domain.RoleAdmin}, wantErr: domain.ErrAbsentSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.role != "" {
				c.Set(KeyRole, tt.role)
			}

			called := false
			err := RBAC(tt.allowed...)(func(echo.Context) error {
				called = true
				return nil
			})(c)

			if called != tt.wantNext {
				t.Fatalf("next called = %v, want %v", called, tt.wantNext)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

func TestHTTPErrorHandler_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrCertificateNotFound, http.StatusNotFound},
		{fmt.Errorf("find certificate: %w", domain.ErrCertificateNotFound), http.StatusNotFound},
		{domain.ErrArtifactNotFound, http.StatusNotFound},
		{domain.ErrDuplicateCertificate, http.StatusConflict},
		{domain.ErrDuplicateIdempotencyKey, http.StatusConflict},
		{domain.ErrVersionConflict, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{domain.ErrInvalidCertificate, http.StatusBadRequest},
		{domain.ErrAbsentSession, http.StatusUnauthorized},
		{domain.ErrInsufficientRole, http.StatusForbidden},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusUnauthorized},
		{domain.ErrUserExists, http.StatusConflict},
		{echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests},
		{errors.New("mongo exploded"), http.StatusInternalServerError},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handler(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("empty error message")
			}
			if tt.code == http.StatusInternalServerError && body.Error != "internal server error" {
				t.Fatalf("internal details leaked: %q", body.Error)
			}
		})
	}
}

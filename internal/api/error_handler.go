package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusMapping turns a domain error into a response. An empty message
// exposes the wrapped error text, which carries the offending detail.
type statusMapping struct {
	target  error
	code    int
	message string
}

var statusMappings = []statusMapping{
	{domain.ErrCertificateNotFound, http.StatusNotFound, "certificate not found"},
	{domain.ErrArtifactNotFound, http.StatusNotFound, "certificate document not found"},
	{domain.ErrDuplicateCertificate, http.StatusConflict, "certificate already registered"},
	{domain.ErrDuplicateIdempotencyKey, http.StatusConflict, "idempotency key already used"},
	{domain.ErrVersionConflict, http.StatusConflict, "certificate was modified concurrently, retry"},
	{domain.ErrInvalidTransition, http.StatusUnprocessableEntity, ""},
	{domain.ErrInvalidCertificate, http.StatusBadRequest, ""},
	{domain.ErrAbsentSession, http.StatusUnauthorized, "not signed in"},
	{domain.ErrInsufficientRole, http.StatusForbidden, "access forbidden"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	// Unknown emails read as bad credentials so accounts cannot be probed.
	{domain.ErrUserNotFound, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
}

// NewHTTPErrorHandler renders every error as {"error": "..."}. Errors with
// no known mapping are logged and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, known := resolveError(err)
		if !known {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error) (int, string, bool) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message), true
	}

	for _, m := range statusMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.message == "" {
			return m.code, err.Error(), true
		}
		return m.code, m.message, true
	}
	return http.StatusInternalServerError, "internal server error", false
}

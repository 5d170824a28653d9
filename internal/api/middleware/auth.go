package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

// Context keys set by Auth and OptionalAuth.
const (
	KeySessionID = "sid"
	KeyUser      = "user"
	KeyRole      = "role"
)

var (
	errMissingHeader = echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	errInvalidHeader = echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	errInvalidToken  = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
)

// Auth validates the bearer token, resolves its session and injects the
// session id, the current user and its role into the context. A token whose
// session was cleared is rejected.
func Auth(jwtSecret string, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, jwtSecret, sessions); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// OptionalAuth behaves like Auth but lets anonymous requests through.
func OptionalAuth(jwtSecret string, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := authenticate(c, jwtSecret, sessions)
			var he *echo.HTTPError
			if err != nil && !errors.As(err, &he) && !errors.Is(err, domain.ErrAbsentSession) {
				return err
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, jwtSecret string, sessions ports.SessionService) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return errMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return errInvalidHeader
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return errInvalidToken
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return errInvalidToken
	}

	user, err := sessions.GetSession(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrAbsentSession
	}

	c.Set(KeySessionID, sid)
	c.Set(KeyUser, user)
	c.Set(KeyRole, user.Role)
	return nil
}

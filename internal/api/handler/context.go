package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/api/middleware"
	"github.com/blockverify/certificate-api/internal/core/domain"
)

// currentSession returns the session injected by the Auth middleware.
// Handlers mounted behind Auth always have one; the check guards against
// routes wired without it.
func currentSession(c echo.Context) (string, *domain.User, error) {
	sid, _ := c.Get(middleware.KeySessionID).(string)
	user, _ := c.Get(middleware.KeyUser).(*domain.User)
	if sid == "" || user == nil {
		return "", nil, domain.ErrAbsentSession
	}
	return sid, user, nil
}

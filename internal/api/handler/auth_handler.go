package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/api/metrics"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    ports.SessionService
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// Signup creates a user account and signs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("signup", "failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("signup", "success").Inc()

	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login authenticates an account and opens a session.
//
// @Summary      Login
// @Description  role selects the sign-in tab; asking for "admin" with a non-admin account is forbidden.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("login", "failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("login", "success").Inc()

	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// Logout clears the current session. The token stops working immediately.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, _, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), sid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports whether the caller is signed in and as whom. Anonymous
// callers get authenticated=false rather than an error.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sid, _, err := currentSession(c)
	if err != nil {
		return c.JSON(http.StatusOK, sessionResponse{})
	}

	ctx := c.Request().Context()
	resp := sessionResponse{
		Authenticated: h.sessions.IsAuthenticated(ctx, sid),
		IsAdmin:       h.sessions.IsAdmin(ctx, sid),
	}
	user, err := h.sessions.GetSession(ctx, sid)
	if err != nil {
		return err
	}
	if user != nil {
		u := toUserResponse(*user)
		resp.User = &u
	}
	return c.JSON(http.StatusOK, resp)
}

// Profile returns the signed-in user.
//
// @Summary      Get profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	_, user, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// UpdateProfile edits the display name and email of the signed-in user.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	sid, _, err := currentSession(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), sid, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.UTC().Format(timestampLayout),
		User:      toUserResponse(r.User),
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/blockverify/certificate-api/docs"
	"github.com/blockverify/certificate-api/internal/api/handler"
	"github.com/blockverify/certificate-api/internal/api/middleware"
	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

const rateLimiterExpiry = 3 * time.Minute

// Dependencies are the services and settings the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionService
	Ledger   ports.LedgerService
	Verifier ports.VerificationService

	// HealthChecks maps backend names to readiness checks.
	HealthChecks map[string]handler.HealthCheck

	JWTSecret       string
	UploadMaxBytes  int64
	VerifyRateLimit float64
	VerifyRateBurst int

	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil; /metrics serves it together with the default registry.
	Registry *prometheus.Registry

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, "Idempotency-Key"},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "blockverify",
		Subsystem:  "http",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authMW := middleware.Auth(deps.JWTSecret, deps.Sessions)
	optionalAuthMW := middleware.OptionalAuth(deps.JWTSecret, deps.Sessions)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	verifyLimiter := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(deps.VerifyRateLimit),
			Burst:     deps.VerifyRateBurst,
			ExpiresIn: rateLimiterExpiry,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions)
	certHandler := handler.NewCertificateHandler(deps.Ledger, deps.UploadMaxBytes)
	verifyHandler := handler.NewVerifyHandler(deps.Verifier)
	adminHandler := handler.NewAdminHandler(deps.Ledger)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	v1 := e.Group("/v1")

	// --- Auth & session ---
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authMW)

	v1.GET("/session", authHandler.Session, optionalAuthMW)

	profile := v1.Group("/profile", authMW)
	profile.GET("", authHandler.Profile)
	profile.PATCH("", authHandler.UpdateProfile)

	// --- Ledger ---
	certs := v1.Group("/certificates", authMW)
	certs.POST("", certHandler.Upload)
	certs.GET("", certHandler.List)
	certs.GET("/:hash", certHandler.Get)
	certs.GET("/:hash/document", certHandler.Document)

	v1.GET("/dashboard", certHandler.Dashboard, authMW)

	// --- Public verification ---
	verify := v1.Group("/verify", verifyLimiter)
	verify.GET("/:hash", verifyHandler.VerifyByPath)
	verify.POST("", verifyHandler.VerifyByBody)

	// --- Admin review ---
	admin := v1.Group("/admin", authMW, adminOnly)
	admin.GET("/certificates", adminHandler.List)
	admin.POST("/certificates/:hash/approve", adminHandler.Approve)
	admin.POST("/certificates/:hash/reject", adminHandler.Reject)

	// --- Health probes, metrics & docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, registry},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

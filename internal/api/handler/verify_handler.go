package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/api/metrics"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

// VerifyHandler exposes the public verification lookup.
type VerifyHandler struct {
	verifier ports.VerificationService
}

func NewVerifyHandler(verifier ports.VerificationService) *VerifyHandler {
	return &VerifyHandler{verifier: verifier}
}

// VerifyByPath handles GET /v1/verify/:hash, the target of shared QR links.
//
// @Summary      Verify a certificate
// @Description  Looks the hash up in the ledger. An unknown hash is not an error: is_valid is false.
// @Tags         verify
// @Produce      json
// @Param        hash  path      string  true  "Certificate hash (0x…)"
// @Success      200   {object}  verificationResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/verify/{hash} [get]
func (h *VerifyHandler) VerifyByPath(c echo.Context) error {
	return h.verify(c, c.Param("hash"))
}

// VerifyByBody handles POST /v1/verify.
//
// @Summary      Verify a certificate
// @Tags         verify
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Hash to verify"
// @Success      200   {object}  verificationResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/verify [post]
func (h *VerifyHandler) VerifyByBody(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.verify(c, req.Hash)
}

func (h *VerifyHandler) verify(c echo.Context, hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "hash is required")
	}

	start := time.Now()
	ctx := ports.WithRemoteAddr(c.Request().Context(), c.RealIP())
	result, err := h.verifier.Verify(ctx, hash)
	if err != nil {
		return err
	}
	metrics.VerificationDuration.Observe(time.Since(start).Seconds())

	outcome := "invalid"
	if result.IsValid {
		outcome = "valid"
	}
	metrics.VerificationsTotal.WithLabelValues(outcome).Inc()

	return c.JSON(http.StatusOK, toVerificationResponse(result))
}

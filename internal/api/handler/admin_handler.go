package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/api/metrics"
	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

// AdminHandler serves the review queue. Routes are mounted behind RBAC(admin).
type AdminHandler struct {
	ledger ports.LedgerService
}

func NewAdminHandler(ledger ports.LedgerService) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

// List handles GET /v1/admin/certificates.
//
// @Summary      Review queue
// @Description  Whole ledger plus status counts and the flagged estimate.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminCertificatesResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/certificates [get]
func (h *AdminHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	certs, err := h.ledger.ListAll(ctx)
	if err != nil {
		return err
	}
	summary, err := h.ledger.Summary(ctx, 0)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, adminCertificatesResponse{
		Stats:        toStatsResponse(summary),
		Certificates: toCertificateResponses(certs),
	})
}

// Approve handles POST /v1/admin/certificates/:hash/approve.
//
// @Summary      Approve a certificate
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        hash  path      string  true  "Certificate hash"
// @Success      200   {object}  certificateResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/admin/certificates/{hash}/approve [post]
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.setStatus(c, domain.StatusVerified)
}

// Reject handles POST /v1/admin/certificates/:hash/reject.
//
// @Summary      Reject a certificate
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        hash  path      string  true  "Certificate hash"
// @Success      200   {object}  certificateResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/admin/certificates/{hash}/reject [post]
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.setStatus(c, domain.StatusRejected)
}

func (h *AdminHandler) setStatus(c echo.Context, status domain.CertificateStatus) error {
	cert, err := h.ledger.SetStatus(c.Request().Context(), c.Param("hash"), status)
	if err != nil {
		return err
	}
	metrics.StatusChangesTotal.WithLabelValues(string(status)).Inc()
	return c.JSON(http.StatusOK, toCertificateResponse(cert))
}

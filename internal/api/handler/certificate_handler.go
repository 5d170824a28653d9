package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/api/metrics"
	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

const (
	pdfMIME           = "application/pdf"
	defaultRecent     = 5
	multipartOverhead = 1 << 20
)

// CertificateHandler serves the ledger to signed-in users.
type CertificateHandler struct {
	ledger         ports.LedgerService
	uploadMaxBytes int64
}

func NewCertificateHandler(ledger ports.LedgerService, uploadMaxBytes int64) *CertificateHandler {
	if uploadMaxBytes <= 0 {
		uploadMaxBytes = 10 << 20
	}
	return &CertificateHandler{ledger: ledger, uploadMaxBytes: uploadMaxBytes}
}

// Upload handles POST /v1/certificates. The body is either JSON or a
// multipart form whose optional "file" part must be a PDF.
//
// @Summary      Upload a certificate
// @Tags         certificates
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Replays an earlier upload with the same key"
// @Param        body             body      uploadCertificateRequest  false  "Certificate details (JSON uploads)"
// @Param        file             formData  file                      false  "Certificate document (PDF)"
// @Success      201              {object}  uploadResponse
// @Success      200              {object}  uploadResponse  "idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      413              {object}  errorResponse
// @Failure      415              {object}  errorResponse
// @Router       /v1/certificates [post]
func (h *CertificateHandler) Upload(c echo.Context) error {
	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, h.uploadMaxBytes+multipartOverhead)

	var req uploadCertificateRequest
	if err := c.Bind(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			metrics.UploadErrorsTotal.WithLabelValues("too_large").Inc()
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "upload too large")
		}
		metrics.UploadErrorsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.UploadErrorsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := toAppendInput(req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		metrics.UploadErrorsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	source := "json"
	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		source = "multipart"
		data, err := h.readDocument(c)
		if err != nil {
			return err
		}
		if data != nil {
			input.Artifact = data
			input.ArtifactContentType = pdfMIME
		}
	}

	result, err := h.ledger.Append(r.Context(), input)
	if err != nil {
		reason := "internal"
		switch {
		case errors.Is(err, domain.ErrDuplicateCertificate):
			reason = "duplicate"
		case errors.Is(err, domain.ErrInvalidCertificate):
			reason = "invalid"
		}
		metrics.UploadErrorsTotal.WithLabelValues(reason).Inc()
		return err
	}

	resp := uploadResponse{
		Certificate:    toCertificateResponse(result.Certificate),
		BlockchainTxID: result.TxID,
		AlreadyExisted: result.AlreadyExisted,
	}
	if result.AlreadyExisted {
		return c.JSON(http.StatusOK, resp)
	}
	metrics.CertificatesAppendedTotal.WithLabelValues(string(result.Certificate.Status), source).Inc()
	return c.JSON(http.StatusCreated, resp)
}

// readDocument returns the "file" part, nil when the form has none.
func (h *CertificateHandler) readDocument(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		metrics.UploadErrorsTotal.WithLabelValues("invalid").Inc()
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid file part")
	}
	if fh.Size > h.uploadMaxBytes {
		metrics.UploadErrorsTotal.WithLabelValues("too_large").Inc()
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d bytes", h.uploadMaxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.uploadMaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.uploadMaxBytes {
		metrics.UploadErrorsTotal.WithLabelValues("too_large").Inc()
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d bytes", h.uploadMaxBytes))
	}
	if len(data) == 0 {
		metrics.UploadErrorsTotal.WithLabelValues("invalid").Inc()
		return nil, echo.NewHTTPError(http.StatusBadRequest, "file is empty")
	}
	if !mimetype.Detect(data).Is(pdfMIME) {
		metrics.UploadErrorsTotal.WithLabelValues("not_pdf").Inc()
		return nil, echo.NewHTTPError(http.StatusUnsupportedMediaType, "only PDF documents are accepted")
	}
	return data, nil
}

// List handles GET /v1/certificates.
//
// @Summary      List certificates
// @Description  Returns the whole ledger in upload order.
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listCertificatesResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/certificates [get]
func (h *CertificateHandler) List(c echo.Context) error {
	certs, err := h.ledger.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listCertificatesResponse{
		Certificates: toCertificateResponses(certs),
		Total:        len(certs),
	})
}

// Get handles GET /v1/certificates/:hash.
//
// @Summary      Get a certificate by hash
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Param        hash  path      string  true  "Certificate hash (0x…)"
// @Success      200   {object}  certificateResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/certificates/{hash} [get]
func (h *CertificateHandler) Get(c echo.Context) error {
	cert, err := h.ledger.FindByHash(c.Request().Context(), c.Param("hash"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCertificateResponse(cert))
}

// Document handles GET /v1/certificates/:hash/document.
//
// @Summary      Download the certificate document
// @Tags         certificates
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        hash  path  string  true  "Certificate hash (0x…)"
// @Success      200
// @Failure      404   {object}  errorResponse
// @Router       /v1/certificates/{hash}/document [get]
func (h *CertificateHandler) Document(c echo.Context) error {
	hash := c.Param("hash")
	data, contentType, err := h.ledger.Document(c.Request().Context(), hash)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = pdfMIME
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+hash+`.pdf"`)
	return c.Blob(http.StatusOK, contentType, data)
}

// Dashboard handles GET /v1/dashboard: ledger statistics and the most
// recent uploads for the signed-in user.
//
// @Summary      User dashboard
// @Tags         certificates
// @Produce      json
// @Security     BearerAuth
// @Param        recent  query     int  false  "Number of recent certificates (default 5)"
// @Success      200     {object}  dashboardResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *CertificateHandler) Dashboard(c echo.Context) error {
	_, user, err := currentSession(c)
	if err != nil {
		return err
	}

	recent := defaultRecent
	if q := c.QueryParam("recent"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "recent must be a non-negative integer")
		}
		recent = n
	}

	summary, err := h.ledger.Summary(c.Request().Context(), recent)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		User:   toUserResponse(*user),
		Stats:  toStatsResponse(summary),
		Recent: toCertificateResponses(summary.Recent),
	})
}

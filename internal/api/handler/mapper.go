package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z"
)

// --- Request → Service input ---

func toAppendInput(req uploadCertificateRequest, idempotencyKey string) (ports.AppendCertificateInput, error) {
	issueDate, err := parseIssueDate(req.IssueDate)
	if err != nil {
		return ports.AppendCertificateInput{}, err
	}
	return ports.AppendCertificateInput{
		Name:           req.Name,
		Issuer:         req.Issuer,
		IssueDate:      issueDate,
		Description:    req.Description,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func parseIssueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: issue_date must be YYYY-MM-DD or RFC 3339", domain.ErrInvalidCertificate)
}

// --- Domain → Response ---

func toUserResponse(u domain.User) userResponse {
	return userResponse{Email: u.Email, Name: u.Name, Role: u.Role}
}

func toCertificateResponse(c *domain.Certificate) certificateResponse {
	resp := certificateResponse{
		Hash:        c.Hash,
		Name:        c.Name,
		Issuer:      c.Issuer,
		IssueDate:   c.IssueDate.UTC().Format(dateLayout),
		Description: c.Description,
		Status:      string(c.Status),
		UploadDate:  c.UploadDate.UTC().Format(timestampLayout),
		Links: certificateLinks{
			Self:   "/v1/certificates/" + c.Hash,
			Verify: "/v1/verify/" + c.Hash,
		},
	}
	if c.ArtifactKey != "" {
		resp.Links.Document = "/v1/certificates/" + c.Hash + "/document"
	}
	return resp
}

func toCertificateResponses(certs []*domain.Certificate) []certificateResponse {
	out := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificateResponse(c))
	}
	return out
}

func toStatsResponse(s *ports.LedgerSummary) statsResponse {
	return statsResponse{
		Total:    s.Total,
		Verified: s.Verified,
		Pending:  s.Pending,
		Rejected: s.Rejected,
		Flagged:  s.Flagged,
	}
}

func toVerificationResponse(r *domain.VerificationResult) verificationResponse {
	resp := verificationResponse{
		IsValid:        r.IsValid,
		BlockchainTxID: r.BlockchainTxID,
		AIRiskScore:    r.AIRiskScore,
		RiskLevel:      domain.RiskLevel(r.AIRiskScore),
		VerifiedAt:     r.VerifiedAt.UTC().Format(timestampLayout),
	}
	if r.Certificate != nil {
		cert := toCertificateResponse(r.Certificate)
		resp.Certificate = &cert
	}
	return resp
}

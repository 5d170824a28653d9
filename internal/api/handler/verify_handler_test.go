package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blockverify/certificate-api/internal/core/domain"
	"github.com/blockverify/certificate-api/internal/core/ports"
)

func TestVerifyHandler_ByPath_Valid(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, hash string) (*domain.VerificationResult, error) {
			if hash != "0xabc" {
				t.Fatalf("unexpected hash %q", hash)
			}
			if ports.RemoteAddr(ctx) == "" {
				t.Fatalf("remote address not propagated")
			}
			return &domain.VerificationResult{
				IsValid:        true,
				Certificate:    sampleCertificate("0xabc"),
				BlockchainTxID: "0xbc0000000000001",
				AIRiskScore:    3,
				VerifiedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/verify/0xabc", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(req, rec)
	c.SetParamNames("hash")
	c.SetParamValues("0xabc")

	if err := NewVerifyHandler(verifier).VerifyByPath(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp verificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.IsValid || resp.Certificate == nil || resp.Certificate.Hash != "0xabc" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RiskLevel != "Very Low" || resp.AIRiskScore != 3 {
		t.Fatalf("unexpected risk: %d %s", resp.AIRiskScore, resp.RiskLevel)
	}
}

func TestVerifyHandler_ByBody_Unknown(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, hash string) (*domain.VerificationResult, error) {
			return &domain.VerificationResult{IsValid: false, BlockchainTxID: "0xbc1", AIRiskScore: 9}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(jsonRequest(http.MethodPost, "/v1/verify", `{"hash":"0x0badc0de"}`), rec)

	if err := NewVerifyHandler(verifier).VerifyByBody(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown hash, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["is_valid"] != false {
		t.Fatalf("expected is_valid=false, got %v", resp["is_valid"])
	}
	if _, ok := resp["certificate"]; ok {
		t.Fatalf("certificate must be omitted")
	}
}

func TestVerifyHandler_ByBody_MissingHash(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, hash string) (*domain.VerificationResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c := newEcho().NewContext(jsonRequest(http.MethodPost, "/v1/verify", `{}`), httptest.NewRecorder())

	err := NewVerifyHandler(verifier).VerifyByBody(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestVerifyHandler_Cancelled(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, hash string) (*domain.VerificationResult, error) {
			return nil, context.Canceled
		},
	}
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("hash")
	c.SetParamValues("0xabc")

	if err := NewVerifyHandler(verifier).VerifyByPath(c); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestVerifyHandler_ByBody_MalformedHash(t *testing.T) {
	verifier := &stubVerifier{
		verifyFn: func(ctx context.Context, hash string) (*domain.VerificationResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c := newEcho().NewContext(jsonRequest(http.MethodPost, "/v1/verify", `{"hash":"not-a-hash"}`), httptest.NewRecorder())

	err := NewVerifyHandler(verifier).VerifyByBody(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if msg, _ := he.Message.(string); !strings.Contains(msg, "hex hash") {
		t.Fatalf("unexpected message %v", he.Message)
	}
}

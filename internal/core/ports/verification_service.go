package ports

import (
	"context"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

// VerificationService looks certificates up by hash and fabricates the
// auxiliary verification data.
type VerificationService interface {
	Verify(ctx context.Context, hash string) (*domain.VerificationResult, error)
}

type remoteAddrKey struct{}

// WithRemoteAddr attaches the caller address recorded in audit events.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrKey{}, addr)
}

// RemoteAddr returns the address stored by WithRemoteAddr, if any.
func RemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(remoteAddrKey{}).(string)
	return addr
}

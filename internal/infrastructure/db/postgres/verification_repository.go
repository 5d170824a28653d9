package postgres

import (
	"context"
	"fmt"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

type VerificationRepository struct {
	db DBTX
}

func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) InsertEvent(ctx context.Context, event *domain.VerificationEvent) error {
	query := `INSERT INTO verification_events (hash, valid, blockchain_tx_id, ai_risk_score, verified_at, remote_addr)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		event.Hash, event.Valid, event.BlockchainTxID, event.AIRiskScore, event.VerifiedAt.UTC(), event.RemoteAddr,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

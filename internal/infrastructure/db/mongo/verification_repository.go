package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

const collectionVerificationEvents = "verification_events"

// VerificationRepository implements ports.VerificationRepository using MongoDB.
type VerificationRepository struct {
	col *mongo.Collection
}

func NewVerificationRepository(db *mongo.Database) *VerificationRepository {
	return &VerificationRepository{col: db.Collection(collectionVerificationEvents)}
}

// InsertEvent persists a verification to the audit collection.
func (r *VerificationRepository) InsertEvent(ctx context.Context, event *domain.VerificationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"hash":             event.Hash,
		"valid":            event.Valid,
		"blockchain_tx_id": event.BlockchainTxID,
		"ai_risk_score":    event.AIRiskScore,
		"verified_at":      event.VerifiedAt.UTC(),
		"recorded_at":      time.Now().UTC(),
	}
	if event.RemoteAddr != "" {
		doc["remote_addr"] = event.RemoteAddr
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blockverify/certificate-api/internal/core/domain"
)

const (
	collectionCertificates = "certificates"
	collectionCounters     = "counters"
	certificateCounterID   = "certificates"
	idempotencyIndexName   = "idempotency_key_unique"
)

// CertificateRepository implements ports.CertificateRepository using MongoDB.
// Insertion order is kept by a monotonically increasing seq drawn from the
// counters collection.
type CertificateRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewCertificateRepository(db *mongo.Database) *CertificateRepository {
	return &CertificateRepository{
		col:      db.Collection(collectionCertificates),
		counters: db.Collection(collectionCounters),
	}
}

// Insert appends a certificate document.
func (r *CertificateRepository) Insert(ctx context.Context, c *domain.Certificate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}
	c.Seq = seq
	c.Version = 1

	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if duplicateOn(err, idempotencyIndexName) {
			return domain.ErrDuplicateIdempotencyKey
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateHash
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// List returns all certificates ordered by seq.
func (r *CertificateRepository) List(ctx context.Context) ([]*domain.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}

	certs := []*domain.Certificate{}
	if err := cursor.All(ctx, &certs); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

func (r *CertificateRepository) FindByHash(ctx context.Context, hash string) (*domain.Certificate, error) {
	return r.findOne(ctx, bson.M{"hash": hash})
}

// FindByIdempotencyKey retrieves a certificate that was uploaded with the given key.
func (r *CertificateRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Certificate, error) {
	return r.findOne(ctx, bson.M{"idempotency_key": key})
}

// UpdateStatus sets the status only when the stored version still matches,
// bumping the version in the same update.
func (r *CertificateRepository) UpdateStatus(ctx context.Context, hash string, status domain.CertificateStatus, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"hash": hash, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"status": string(status)},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update certificate status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"hash": hash})
	if err != nil {
		return fmt.Errorf("update certificate status: %w", err)
	}
	if n == 0 {
		return domain.ErrCertificateNotFound
	}
	return domain.ErrVersionConflict
}

// EnsureIndexes creates the indexes the ledger relies on. The unique hash
// index rejects colliding hashes. The idempotency key index is unique over
// documents that carry a key, which makes a replayed upload lose the insert.
func (r *CertificateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "seq", Value: 1}}},
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetName(idempotencyIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *CertificateRepository) findOne(ctx context.Context, filter bson.M) (*domain.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Certificate
	if err := r.col.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return &c, nil
}

// duplicateOn reports whether err is a duplicate key error raised by the
// named index.
func duplicateOn(err error, index string) bool {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return false
	}
	for _, e := range we.WriteErrors {
		if e.Code == 11000 && strings.Contains(e.Message, index) {
			return true
		}
	}
	return false
}

func (r *CertificateRepository) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": certificateCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next certificate seq: %w", err)
	}
	return counter.Seq, nil
}

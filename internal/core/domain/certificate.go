package domain

import (
	"errors"
	"time"
)

// CertificateStatus represents the review state of a certificate.
type CertificateStatus string

const (
	StatusPending  CertificateStatus = "pending"
	StatusVerified CertificateStatus = "verified"
	StatusRejected CertificateStatus = "rejected"
)

// validTransitions defines the allowed review transitions. Re-applying the
// current status is always accepted.
var validTransitions = map[CertificateStatus][]CertificateStatus{
	StatusPending:  {StatusVerified, StatusRejected},
	StatusVerified: {StatusRejected},
	StatusRejected: {StatusVerified},
}

var (
	ErrCertificateNotFound  = errors.New("certificate not found")
	ErrDuplicateHash        = errors.New("certificate hash already exists")
	ErrDuplicateCertificate = errors.New("certificate already registered")
	// ErrDuplicateIdempotencyKey is returned by storage when another upload
	// already claimed the idempotency key.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrInvalidCertificate      = errors.New("invalid certificate")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrVersionConflict         = errors.New("certificate was modified concurrently")
	ErrArtifactNotFound        = errors.New("certificate document not found")
)

// Valid reports whether s is a known status.
func (s CertificateStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s CertificateStatus) CanTransitionTo(next CertificateStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Certificate is one entry of the ledger. Hash is assigned on append and
// never changes; Seq fixes the insertion order and Version guards status
// updates against lost writes.
type Certificate struct {
	Hash           string            `json:"hash" bson:"hash"`
	Name           string            `json:"name" bson:"name"`
	Issuer         string            `json:"issuer" bson:"issuer"`
	IssueDate      time.Time         `json:"issue_date" bson:"issue_date"`
	Description    string            `json:"description,omitempty" bson:"description,omitempty"`
	Status         CertificateStatus `json:"status" bson:"status"`
	UploadDate     time.Time         `json:"upload_date" bson:"upload_date"`
	ArtifactKey    string            `json:"artifact_key,omitempty" bson:"artifact_key,omitempty"`
	IdempotencyKey string            `json:"-" bson:"idempotency_key,omitempty"`
	Seq            int64             `json:"-" bson:"seq"`
	Version        int64             `json:"-" bson:"version"`
}

package domain

import "time"

// VerificationResult is computed per lookup and never stored.
type VerificationResult struct {
	IsValid        bool
	Certificate    *Certificate // nil on a lookup miss
	BlockchainTxID string
	AIRiskScore    int
	VerifiedAt     time.Time
}

// VerificationEvent is the audit record written for every lookup.
type VerificationEvent struct {
	Hash           string
	Valid          bool
	BlockchainTxID string
	AIRiskScore    int
	VerifiedAt     time.Time
	RemoteAddr     string
}

// RiskLevel buckets a risk score into a display label.
func RiskLevel(score int) string {
	switch {
	case score <= 20:
		return "Very Low"
	case score <= 40:
		return "Low"
	case score <= 60:
		return "Medium"
	case score <= 80:
		return "High"
	default:
		return "Very High"
	}
}

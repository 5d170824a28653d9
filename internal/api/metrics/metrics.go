// Package metrics defines the custom Prometheus metrics of the BlockVerify
// API. Metrics are registered on the default registry through promauto when
// the package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blockverify"

// ── Ledger metrics ────────────────────────────────────────────────────────────

// CertificatesAppendedTotal counts certificates added to the ledger.
// Labels:
//   - status: the initial status ("verified" or "pending")
//   - source: "json" or "multipart"
var CertificatesAppendedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "certificates_appended_total",
		Help:      "Total number of certificates appended to the ledger.",
	},
	[]string{"status", "source"},
)

// UploadErrorsTotal counts rejected uploads.
// Label:
//   - reason: e.g. "invalid", "duplicate", "too_large", "not_pdf", "internal"
var UploadErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_errors_total",
		Help:      "Total number of certificate uploads that failed.",
	},
	[]string{"reason"},
)

// StatusChangesTotal counts admin review decisions.
// Label:
//   - status: the status applied ("verified" or "rejected")
var StatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_total",
		Help:      "Total number of certificate status changes applied by administrators.",
	},
	[]string{"status"},
)

// ── Verification metrics ──────────────────────────────────────────────────────

// VerificationsTotal counts verification lookups.
// Label:
//   - outcome: "valid" or "invalid"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of certificate verifications, by outcome.",
	},
	[]string{"outcome"},
)

// VerificationDuration measures verification latency including the simulated
// network delay.
var VerificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "verification_duration_seconds",
		Help:      "Duration of certificate verification requests.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts verification audit events leaving the dispatcher.
// Label:
//   - result: "stored", "failed" or "dropped"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of verification audit events, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the events waiting in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login and signup attempts.
// Labels:
//   - kind: "login" or "signup"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login and signup attempts.",
	},
	[]string{"kind", "result"},
)

// AuditObserver reports dispatcher activity to the audit metrics.
type AuditObserver struct{}

func (AuditObserver) Stored()  { AuditEventsTotal.WithLabelValues("stored").Inc() }
func (AuditObserver) Failed()  { AuditEventsTotal.WithLabelValues("failed").Inc() }
func (AuditObserver) Dropped() { AuditEventsTotal.WithLabelValues("dropped").Inc() }

func (AuditObserver) QueueDepth(worker string, depth int) {
	AuditQueueDepth.WithLabelValues(worker).Set(float64(depth))
}

// Package metrics exposes the gateway's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionsActive tracks sessions currently holding an admission slot.
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatgate_connections_active",
			Help: "Number of websocket sessions currently admitted",
		},
	)

	// AdmissionsTotal counts admission verdicts by result (admitted, rejected, error).
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgate_admissions_total",
			Help: "Total admission attempts by result",
		},
		[]string{"result"},
	)

	// MessagesTotal counts processed messages by request kind and outcome.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatgate_messages_total",
			Help: "Total inbound messages by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// ReplyDuration observes the time from decoding a request to handing
	// the encoded reply to the connection writer.
	ReplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatgate_reply_duration_seconds",
			Help:    "Time spent producing a reply for an inbound message",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
	)
)

// Admission outcome labels.
const (
	ResultAdmitted = "admitted"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Message outcome labels.
const (
	OutcomeReplied        = "replied"
	OutcomePolicyRejected = "policy_rejected"
	OutcomeFramingError   = "framing_error"
	OutcomeEncodeError    = "encode_error"
)

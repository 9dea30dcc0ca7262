package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerifyAttempts counts individual payment verification calls, per strategy (bill or booking fallback).
	VerifyAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinepay",
			Name:      "verify_attempts_total",
			Help:      "The total number of payment verification attempts",
		},
		[]string{"strategy"},
	)

	// VerifyAttemptsFailed counts verification calls that errored and were tolerated by the poll loop.
	VerifyAttemptsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinepay",
			Name:      "verify_attempts_failed_total",
			Help:      "The total number of verification attempts that returned an error",
		},
		[]string{"strategy"},
	)

	// SessionsConcluded counts polling sessions per terminal outcome (success, failed, expired, aborted, superseded).
	SessionsConcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinepay",
			Name:      "sessions_concluded_total",
			Help:      "The total number of polling sessions reaching a terminal state",
		},
		[]string{"outcome"},
	)

	// VerifyDuration tracks how long a single verification call takes (summary with quantiles 0.5, 0.9, and 0.99)
	VerifyDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "cinepay",
			Name:       "verify_duration_seconds",
			Help:       "The time spent on a single verification call",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"strategy"},
	)

	// MessagesProcessed counts messages handled by the event router.
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinepay",
			Name:      "messages_processed_total",
			Help:      "The total number of processed messages",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingFailed counts messages whose handler returned an error.
	MessagesProcessingFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinepay",
			Name:      "messages_processing_failed_total",
			Help:      "The total number of messages that failed to process",
		},
		[]string{"topic", "handler"},
	)

	// MessagesProcessingDuration tracks the time spent handling a single message.
	MessagesProcessingDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "cinepay",
			Name:       "messages_processing_duration_seconds",
			Help:       "The time spent processing a single message",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"topic", "handler"},
	)
)

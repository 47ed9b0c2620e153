// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krs_tool_calls_total",
			Help: "Total number of tool dispatches",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krs_tool_call_duration_seconds",
			Help:    "Tool dispatch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"tool"},
	)

	// outcome: created, skipped, failed
	PodBatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krs_pod_batch_items_total",
			Help: "Pods processed by batch creation, by outcome",
		},
		[]string{"outcome"},
	)

	// outcome: deleted, failed, suggested
	PodDeleteItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krs_pod_delete_items_total",
			Help: "Pods processed by deletion requests, by outcome",
		},
		[]string{"outcome"},
	)

	SessionTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krs_session_turns_total",
			Help: "Conversation turns handled, by state transition",
		},
		[]string{"transition"},
	)
)

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts upload attempts by outcome (accepted, rejected, failed).
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_uploads_total",
		Help: "Number of video upload attempts by outcome.",
	}, []string{"outcome"})

	// ProcessingTotal counts processing invocations by terminal outcome.
	ProcessingTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_processing_total",
		Help: "Number of processing invocations by outcome.",
	}, []string{"outcome"})

	// StreamRequestsTotal counts stream serves by response kind (full, partial, error).
	StreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_stream_requests_total",
		Help: "Number of stream requests by response kind.",
	}, []string{"kind"})

	// InteractionsTotal counts counter increments by counter name.
	InteractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_interactions_total",
		Help: "Number of interaction counter increments by counter.",
	}, []string{"counter"})
)

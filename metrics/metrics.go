/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics exposes Prometheus instruments for the webhook
// pipeline. All instruments register on the default registry and are
// served from the binary's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhooks counts inbound webhook deliveries by outcome:
	// accepted, ignored, rejected (bad signature), or invalid.
	Webhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linear_agent_webhooks_total",
		Help: "Inbound webhook deliveries by outcome.",
	}, []string{"outcome"})

	// Tasks counts background agent tasks by outcome: success or failure.
	Tasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linear_agent_tasks_total",
		Help: "Completed agent tasks by outcome.",
	}, []string{"outcome"})

	// TaskDuration observes wall-clock task duration in seconds.
	// Buckets span one second to about an hour, covering the 30 minute
	// task timeout with headroom.
	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linear_agent_task_duration_seconds",
		Help:    "Wall-clock duration of agent tasks.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

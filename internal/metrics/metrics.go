// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package metrics exposes the Prometheus instruments for the command core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes recorded on vorte_commands_total.
const (
	OutcomeOK           = "ok"
	OutcomeUsage        = "usage"
	OutcomeDenied       = "denied"
	OutcomeConflict     = "conflict"
	OutcomeFailed       = "failed"
	OutcomeUnknown      = "unknown"
	OutcomeCollaborator = "collaborator_failure"
)

// Metrics holds the Prometheus instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	MessagesTotal        prometheus.Counter
	CommandsTotal        *prometheus.CounterVec
	CommandDuration      *prometheus.HistogramVec
	CooldownDroppedTotal prometheus.Counter
	SessionsEvictedTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the instruments on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vorte_messages_total",
			Help: "Total number of inbound messages seen",
		}),
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vorte_commands_total",
			Help: "Total number of commands handled",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vorte_command_duration_seconds",
			Help:    "Duration of command handling in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		CooldownDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vorte_cooldown_dropped_total",
			Help: "Commands dropped by the per-sender cooldown",
		}),
		SessionsEvictedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vorte_sessions_evicted_total",
			Help: "Game sessions evicted by the reaper",
		}, []string{"kind"}),
	}
}

// Registry returns the registry backing the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveActiveSessions registers a gauge sampled from fn at scrape time.
func (m *Metrics) ObserveActiveSessions(fn func() float64) {
	if m == nil {
		return
	}
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "vorte_active_sessions",
		Help: "Game sessions currently held in the session store",
	}, fn)
}

func (m *Metrics) RecordMessage() {
	if m == nil {
		return
	}
	m.MessagesTotal.Inc()
}

func (m *Metrics) RecordCommand(command, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func (m *Metrics) RecordCooldownDrop() {
	if m == nil {
		return
	}
	m.CooldownDroppedTotal.Inc()
}

func (m *Metrics) RecordEviction(kind string) {
	if m == nil {
		return
	}
	m.SessionsEvictedTotal.WithLabelValues(kind).Inc()
}

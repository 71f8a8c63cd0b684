// Package metrics defines and registers all custom Prometheus metrics for the
// identity service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsProcessedTotal counts audit events persisted by the dispatcher.
// Labels:
//   - entity: "user" or "role"
//   - action: "created", "updated", "deleted" or "bulk_updated"
var AuditEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_processed_total",
		Help:      "Total number of audit events successfully persisted.",
	},
	[]string{"entity", "action"},
)

// AuditEventsErrorsTotal counts audit events that were not persisted.
// Label:
//   - reason: "queue_full", "store_failed" or "shutdown"
var AuditEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of audit events dropped or failed.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditProcessingDuration measures how long persisting a single event takes.
// Label:
//   - result: "ok" or "error"
var AuditProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_processing_duration_seconds",
		Help:      "Duration of audit event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// AccessChecksTotal counts module access decisions.
// Label:
//   - result: "granted", "inactive-account", "no-access" or "error"
var AccessChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_checks_total",
		Help:      "Total number of module access checks, by outcome.",
	},
	[]string{"result"},
)

// RoleCacheTotal counts role cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var RoleCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_cache_lookups_total",
		Help:      "Total number of role cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Mutation metrics ──────────────────────────────────────────────────────────

// BulkUpdatesTotal counts batch update requests.
// Labels:
//   - mode: "same" or "different"
//   - outcome: "applied" or the error kind that aborted the batch
var BulkUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_updates_total",
		Help:      "Total number of bulk update requests, by mode and outcome.",
	},
	[]string{"mode", "outcome"},
)

// BulkUsersModifiedTotal counts users modified by batch updates.
var BulkUsersModifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_users_modified_total",
		Help:      "Total number of user records modified by bulk updates.",
	},
	[]string{"mode"},
)

// DuplicateKeyRejectionsTotal counts writes the store's unique indexes
// rejected after the uniqueness check had passed.
// Label:
//   - field: "email", "username" or "name"
var DuplicateKeyRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_key_rejections_total",
		Help:      "Total number of writes rejected by a unique index.",
	},
	[]string{"field"},
)

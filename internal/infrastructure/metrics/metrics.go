// Package metrics exposes the ledger's domain-level Prometheus metrics.
// HTTP-level metrics live in the router middleware; everything here counts
// business events regardless of which surface triggered them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ledger metrics
	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_accounts_created_total",
		Help: "Total number of ledger accounts created",
	})
	EntriesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_entries_posted_total",
		Help: "Total number of journal entries posted",
	})
	EntriesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_entries_reversed_total",
		Help: "Total number of journal entries reversed",
	})

	// Period metrics
	PeriodsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_periods_closed_total",
		Help: "Total number of financial periods closed",
	})
	PeriodsReopened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_periods_reopened_total",
		Help: "Total number of financial periods reopened",
	})

	// Reconciliation metrics
	StatementsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_statements_imported_total",
		Help: "Total number of bank statements imported",
	})
	MatchingRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_matching_runs_total",
		Help: "Total number of reconciliation matching passes",
	})
	LinesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_statement_lines_matched_total",
		Help: "Total number of statement lines matched across all passes",
	})
	LinesUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_statement_lines_unmatched_total",
		Help: "Total number of statement lines left unmatched across all passes",
	})
	ReconciliationsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_reconciliations_approved_total",
		Help: "Total number of reconciliations approved",
	})

	// Outbox metrics
	OutboxEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_outbox_events_published_total",
		Help: "Total number of outbox events delivered to the publisher",
	})
	OutboxPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glcore_outbox_publish_errors_total",
		Help: "Total number of outbox events that failed to publish",
	})
)

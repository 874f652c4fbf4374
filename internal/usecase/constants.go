package usecase

import "time"

const (
	// DefaultPageSize is used when a list request omits a limit.
	DefaultPageSize = 50
	// MaxPageSize caps list requests.
	MaxPageSize = 500

	// EntryRefPrefix prefixes references of ordinary postings.
	EntryRefPrefix = "GL"
	// ReversalRefPrefix prefixes references of reversal postings.
	ReversalRefPrefix = "RV"

	// IdempotencyTTL is how long idempotency keys are retained.
	IdempotencyTTL = 24 * time.Hour

	// MatchRuleCacheTTL bounds staleness of cached match rules.
	MatchRuleCacheTTL = 5 * time.Minute
)

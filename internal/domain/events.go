package domain

import "time"

// Event types
const (
	EventTypeEntryPosted            = "ledger.entry.posted"
	EventTypeEntryReversed          = "ledger.entry.reversed"
	EventTypePeriodClosed           = "ledger.period.closed"
	EventTypePeriodReopened         = "ledger.period.reopened"
	EventTypeStatementImported      = "recon.statement.imported"
	EventTypeReconciliationApproved = "recon.reconciliation.approved"
)

// Aggregate types
const (
	AggregateTypeAccount        = "account"
	AggregateTypeEntry          = "journal_entry"
	AggregateTypePeriod         = "financial_period"
	AggregateTypeStatement      = "bank_statement"
	AggregateTypeReconciliation = "bank_reconciliation"
)

// OutboxEvent represents an event to be published.
type OutboxEvent struct {
	ID            string
	TenantID      string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryPostedEvent payload, consumed by accounting-integration adapters.
type EntryPostedEvent struct {
	EntryID    string            `json:"entry_id"`
	Reference  string            `json:"reference"`
	PeriodCode string            `json:"period_code"`
	AccountIDs []string          `json:"account_ids"`
	Amounts    map[string]string `json:"amounts"` // account id -> signed base amount
	EntryDate  string            `json:"entry_date"`
}

// EntryReversedEvent payload
type EntryReversedEvent struct {
	ReversalEntryID string `json:"reversal_entry_id"`
	OriginalEntryID string `json:"original_entry_id"`
	Reference       string `json:"reference"`
}

// PeriodClosedEvent payload
type PeriodClosedEvent struct {
	PeriodID     string `json:"period_id"`
	PeriodCode   string `json:"period_code"`
	EntryCount   int64  `json:"entry_count"`
	TotalDebits  string `json:"total_debits"`
	TotalCredits string `json:"total_credits"`
}

// PeriodReopenedEvent payload; reopen is privileged and itself audited.
type PeriodReopenedEvent struct {
	PeriodID   string `json:"period_id"`
	PeriodCode string `json:"period_code"`
	ReopenedBy string `json:"reopened_by"`
	Reason     string `json:"reason"`
}

// StatementImportedEvent payload
type StatementImportedEvent struct {
	StatementID   string `json:"statement_id"`
	BankAccountID string `json:"bank_account_id"`
	LineCount     int    `json:"line_count"`
	SkippedRows   int    `json:"skipped_rows"`
}

// ReconciliationApprovedEvent payload
type ReconciliationApprovedEvent struct {
	ReconciliationID string `json:"reconciliation_id"`
	StatementID      string `json:"statement_id"`
	BankAccountID    string `json:"bank_account_id"`
	Variance         string `json:"variance"`
}

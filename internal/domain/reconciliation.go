package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the lifecycle state of a bank reconciliation.
type ReconciliationStatus string

const (
	ReconciliationStatusDraft      ReconciliationStatus = "DRAFT"
	ReconciliationStatusInProgress ReconciliationStatus = "IN_PROGRESS"
	ReconciliationStatusReconciled ReconciliationStatus = "RECONCILED"
	ReconciliationStatusApproved   ReconciliationStatus = "APPROVED"
)

// ItemType classifies a reconciling item.
type ItemType string

const (
	ItemOutstandingCheck ItemType = "OUTSTANDING_CHECK"
	ItemDepositInTransit ItemType = "DEPOSIT_IN_TRANSIT"
	ItemBankCharge       ItemType = "BANK_CHARGE"
	ItemBankInterest     ItemType = "BANK_INTEREST"
	ItemAdjustment       ItemType = "ADJUSTMENT"
)

// MatchType classifies how a statement line was paired with a book transaction.
type MatchType string

const (
	MatchExact     MatchType = "EXACT"
	MatchRuleBased MatchType = "RULE_BASED"
	MatchFuzzy     MatchType = "FUZZY"
	MatchManual    MatchType = "MANUAL"
	MatchUnmatched MatchType = "UNMATCHED"
)

// BankReconciliation ties one bank statement to the book-side transactions
// of the same account and explains the balance difference through items.
type BankReconciliation struct {
	ID                string
	TenantID          string
	BankAccountID     string
	StatementID       string
	OpeningBalance    decimal.Decimal
	ClosingBalance    decimal.Decimal
	BookBalance       decimal.Decimal // book balance as of the statement end date
	ReconciledBalance decimal.Decimal
	Variance          decimal.Decimal
	Status            ReconciliationStatus
	Items             []ReconciliationItem
	Matches           []ReconciliationMatch
	Audit             AuditFields
}

// ReconciliationItem is an outstanding check, deposit in transit, charge,
// interest or manual adjustment explaining part of the variance.
type ReconciliationItem struct {
	ID               string
	ReconciliationID string
	Type             ItemType
	Description      string
	Reference        string
	Date             time.Time
	Amount           decimal.Decimal // non-negative; the type carries the sign convention
	Aged             bool            // older than the configured staleness window
	CreatedAt        time.Time
}

// ReconciliationMatch pairs one statement line with zero-or-one book transaction.
// It is a matching-pass output, recomputed on each run.
type ReconciliationMatch struct {
	StatementLineID   string
	BookTransactionID string // empty for unmatched lines
	Type              MatchType
	Confidence        int // 0..100
	DateDeltaDays     int
	RuleID            string // populated for rule-based matches
}

// ComputeVariance applies the reconciling items to both sides and returns
// the unexplained difference.
//
// Sign convention (fixed here once, applied everywhere): deposits in transit
// and outstanding checks adjust the bank side toward the book; interest,
// charges and signed adjustments adjust the book side toward the bank.
//
//	adjustedBank = statementClosing + depositsInTransit - outstandingChecks
//	adjustedBook = bookClosing + bankInterest - bankCharges + adjustments
//	variance     = adjustedBank - adjustedBook
func ComputeVariance(statementClosing, bookClosing decimal.Decimal, items []ReconciliationItem) decimal.Decimal {
	adjustedBank := statementClosing
	adjustedBook := bookClosing
	for i := range items {
		it := &items[i]
		switch it.Type {
		case ItemDepositInTransit:
			adjustedBank = adjustedBank.Add(it.Amount)
		case ItemOutstandingCheck:
			adjustedBank = adjustedBank.Sub(it.Amount)
		case ItemBankInterest:
			adjustedBook = adjustedBook.Add(it.Amount)
		case ItemBankCharge:
			adjustedBook = adjustedBook.Sub(it.Amount)
		case ItemAdjustment:
			adjustedBook = adjustedBook.Add(it.Amount)
		}
	}
	return adjustedBank.Sub(adjustedBook)
}

// CanApprove reports whether the reconciliation may reach Approved.
func (r *BankReconciliation) CanApprove(epsilon decimal.Decimal) bool {
	return r.Variance.Abs().LessThanOrEqual(epsilon)
}

// MatchRuleOperator is the comparison a user-defined matching rule applies.
type MatchRuleOperator string

const (
	RuleOpEquals      MatchRuleOperator = "EQUALS"
	RuleOpContains    MatchRuleOperator = "CONTAINS"
	RuleOpAmountDelta MatchRuleOperator = "AMOUNT_DELTA"
	RuleOpDateWindow  MatchRuleOperator = "DATE_WINDOW"
)

// MatchRuleField is the statement/book field a rule inspects.
type MatchRuleField string

const (
	RuleFieldReference   MatchRuleField = "REFERENCE"
	RuleFieldDescription MatchRuleField = "DESCRIPTION"
	RuleFieldAmount      MatchRuleField = "AMOUNT"
	RuleFieldDate        MatchRuleField = "DATE"
)

// MatchRule is a user-defined matching rule, evaluated in descending
// priority order; the first rule whose conditions all hold wins.
type MatchRule struct {
	ID         string
	TenantID   string
	Name       string
	Priority   int
	Confidence int // confidence recorded for matches produced by this rule
	Conditions []MatchCondition
	Active     bool
}

// MatchCondition is one predicate of a rule over the (line, candidate) pair.
type MatchCondition struct {
	Field     MatchRuleField    `json:"field"`
	Operator  MatchRuleOperator `json:"operator"`
	Tolerance decimal.Decimal   `json:"tolerance"` // amount tolerance or day window, by operator
}

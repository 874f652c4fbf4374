package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatement is an imported external statement for one bank account.
type BankStatement struct {
	ID             string
	TenantID       string
	BankAccountID  string
	StartDate      time.Time
	EndDate        time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Lines          []BankStatementLine
	Audit          AuditFields
}

// BankStatementLine is one normalized row of a bank statement.
type BankStatementLine struct {
	ID              string
	StatementID     string
	LineNo          int
	TransactionDate time.Time
	Description     string
	Reference       string
	DebitAmount     decimal.Decimal // money out at the bank
	CreditAmount    decimal.Decimal // money in at the bank
	RunningBalance  decimal.Decimal
	Reconciled      bool
}

// NetMovement is the signed movement of the line: credit positive, debit negative.
func (l *BankStatementLine) NetMovement() decimal.Decimal {
	return l.CreditAmount.Sub(l.DebitAmount)
}

// SignedAmount is the line amount seen from the bank's perspective,
// positive for money in, negative for money out.
func (l *BankStatementLine) SignedAmount() decimal.Decimal {
	if !l.CreditAmount.IsZero() {
		return l.CreditAmount
	}
	return l.DebitAmount.Neg()
}

// BookTransaction is the book-side view of a posted ledger line against
// a bank account, read (never mutated) by the reconciliation matcher.
type BookTransaction struct {
	ID        string
	EntryID   string
	AccountID string
	Date      time.Time
	Direction Direction
	Amount    decimal.Decimal
	Reference string
}

// SignedAmount is the book amount seen from the bank account's perspective.
// A debit on a bank (asset) account is money in, a credit money out.
func (t *BookTransaction) SignedAmount() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount
	}
	return t.Amount.Neg()
}

package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a journal entry line.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryStatusDraft           EntryStatus = "DRAFT"
	EntryStatusPendingApproval EntryStatus = "PENDING_APPROVAL"
	EntryStatusPosted          EntryStatus = "POSTED"
	EntryStatusReversed        EntryStatus = "REVERSED"
)

// BalanceEpsilon is the smallest currency unit. A debit/credit difference
// of one cent or more is unbalanced; only sub-cent conversion residue passes.
var BalanceEpsilon = decimal.RequireFromString("0.01")

// JournalEntry is a balanced set of lines posted to the ledger.
// Posted entries are append-only: they are never mutated or deleted,
// only neutralized by a reversing entry that references them.
type JournalEntry struct {
	ID           string
	TenantID     string
	Reference    string // {prefix}-{periodCode}-{sequence}, assigned at posting
	EntryDate    time.Time
	PeriodID     string
	Status       EntryStatus
	SourceModule string // originating module tag, e.g. "loans", "payroll", "manual"
	Description  string
	ReversalOf   string // id of the entry this one reverses, empty otherwise
	ReversedBy   string // id of the entry that reversed this one, empty otherwise
	Lines        []JournalEntryLine
	Audit        AuditFields
}

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	ID           string
	EntryID      string
	AccountID    string
	AccountCode  string
	Direction    Direction
	Amount       decimal.Decimal // always non-negative
	Currency     string
	ExchangeRate decimal.Decimal // rate to base currency; zero means 1:1
	BaseAmount   decimal.Decimal // Amount converted to base currency
	Reference    string
	CreatedAt    time.Time
}

// BaseValue returns the line amount expressed in the base currency.
func (l *JournalEntryLine) BaseValue() decimal.Decimal {
	if !l.BaseAmount.IsZero() {
		return l.BaseAmount
	}
	if l.ExchangeRate.IsZero() {
		return l.Amount
	}
	return l.Amount.Mul(l.ExchangeRate)
}

// Totals sums debit and credit sides in base currency.
func (e *JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for i := range e.Lines {
		l := &e.Lines[i]
		if l.Direction == Debit {
			debits = debits.Add(l.BaseValue())
		} else {
			credits = credits.Add(l.BaseValue())
		}
	}
	return debits, credits
}

// ValidateBalanced checks the double-entry invariant within epsilon.
func (e *JournalEntry) ValidateBalanced(epsilon decimal.Decimal) error {
	if len(e.Lines) < 2 {
		return fmt.Errorf("%w: entry must have at least two lines", ErrValidation)
	}
	for i := range e.Lines {
		l := &e.Lines[i]
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be positive for account %s", ErrValidation, l.AccountCode)
		}
		if l.Direction != Debit && l.Direction != Credit {
			return fmt.Errorf("%w: invalid direction %q", ErrValidation, l.Direction)
		}
	}
	debits, credits := e.Totals()
	if debits.Sub(credits).Abs().GreaterThanOrEqual(epsilon) {
		return fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedEntry, debits.String(), credits.String())
	}
	return nil
}

// Reversal builds a new entry with every line flipped, referencing e.
// The caller assigns IDs, status and the target period.
func (e *JournalEntry) Reversal(entryDate time.Time) JournalEntry {
	rev := JournalEntry{
		TenantID:     e.TenantID,
		EntryDate:    entryDate,
		SourceModule: e.SourceModule,
		Description:  "reversal of " + e.Reference,
		ReversalOf:   e.ID,
		Lines:        make([]JournalEntryLine, len(e.Lines)),
	}
	for i, l := range e.Lines {
		flipped := l
		flipped.ID = ""
		flipped.EntryID = ""
		if l.Direction == Debit {
			flipped.Direction = Credit
		} else {
			flipped.Direction = Debit
		}
		rev.Lines[i] = flipped
	}
	return rev
}

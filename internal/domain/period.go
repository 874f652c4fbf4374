package domain

import (
	"fmt"
	"time"
)

// PeriodStatus is the lifecycle state of a financial period.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusLocked PeriodStatus = "LOCKED"
)

// FinancialPeriod is an accounting-calendar window that postings are scoped to.
// Periods within a fiscal year are contiguous and non-overlapping.
type FinancialPeriod struct {
	ID          string
	TenantID    string
	Code        string // e.g. "2026-03"
	StartDate   time.Time
	EndDate     time.Time
	FiscalYear  int
	FiscalMonth int
	Status      PeriodStatus
	// NextSequence is the next gap-free posting sequence for this period.
	NextSequence int64
	Audit        AuditFields
}

// Contains reports whether date falls inside the period window (inclusive).
func (p *FinancialPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Overlaps reports whether the two periods share any date.
func (p *FinancialPeriod) Overlaps(other *FinancialPeriod) bool {
	return !p.EndDate.Before(other.StartDate) && !other.EndDate.Before(p.StartDate)
}

// CanTransition validates a status transition.
// Open -> Closed, Closed -> Locked, Closed -> Open (explicit reopen only).
func (p *FinancialPeriod) CanTransition(to PeriodStatus) error {
	switch {
	case p.Status == PeriodStatusOpen && to == PeriodStatusClosed:
		return nil
	case p.Status == PeriodStatusClosed && to == PeriodStatusLocked:
		return nil
	case p.Status == PeriodStatusClosed && to == PeriodStatusOpen:
		return nil
	case p.Status == PeriodStatusLocked:
		return fmt.Errorf("%w: period %s", ErrPeriodLocked, p.Code)
	default:
		return fmt.Errorf("%w: cannot transition %s from %s to %s", ErrValidation, p.Code, p.Status, to)
	}
}

// ClosingSummary is the result of closing a period.
type ClosingSummary struct {
	PeriodID     string
	PeriodCode   string
	EntryCount   int64
	TotalDebits  string
	TotalCredits string
	Balanced     bool
	ClosedAt     time.Time
}

package domain

import "errors"

var (
	// Validation errors
	ErrValidation      = errors.New("validation failed")
	ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")

	// Period errors
	ErrPeriodClosed          = errors.New("financial period is not open for posting")
	ErrPeriodCloseInProgress = errors.New("period close already in progress")
	ErrUnpostedEntriesExist  = errors.New("unposted entries remain in period")
	ErrPeriodOverlap         = errors.New("financial period overlaps an existing period")
	ErrPeriodLocked          = errors.New("financial period is locked")

	// Not-found errors
	ErrAccountNotFound        = errors.New("account not found")
	ErrEntryNotFound          = errors.New("journal entry not found")
	ErrPeriodNotFound         = errors.New("financial period not found")
	ErrStatementNotFound      = errors.New("bank statement not found")
	ErrReconciliationNotFound = errors.New("reconciliation not found")

	// Ingestion errors
	ErrImportNoValidRows = errors.New("no valid data")

	// Reconciliation errors
	ErrReconciliationVariance = errors.New("reconciliation variance is not zero")

	// Storage errors
	ErrTransientStorage = errors.New("transient storage failure")
)

package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error)
	ListSubtree(ctx context.Context, tenantID, path string) ([]*domain.Account, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time, updatedBy string) error
	HasPostings(ctx context.Context, accountID string) (bool, error)
}

// JournalRepository defines data access for journal entries and lines.
// Posted entries are append-only: the only permitted mutation is the
// status flip performed when an entry is reversed.
type JournalRepository interface {
	CreateEntry(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListByPeriod(ctx context.Context, tenantID, periodID string, limit, offset int) ([]*domain.JournalEntry, error)
	MarkReversed(ctx context.Context, tx Transaction, id, reversedBy string, updatedAt time.Time) error
	CountUnposted(ctx context.Context, tx Transaction, periodID string) (int64, error)
	PeriodTotals(ctx context.Context, tx Transaction, periodID string) (count int64, debits, credits decimal.Decimal, err error)
	MovementsByAccount(ctx context.Context, tenantID string, start, end time.Time) ([]AccountMovement, error)
	BookTransactions(ctx context.Context, accountID string, start, end time.Time) ([]domain.BookTransaction, error)
	BookBalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

// PeriodRepository defines data access for financial periods.
type PeriodRepository interface {
	Create(ctx context.Context, period *domain.FinancialPeriod) error
	GetByID(ctx context.Context, id string) (*domain.FinancialPeriod, error)
	FindByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FinancialPeriod, error)
	// FindByDateForUpdate locks the period row for the duration of tx,
	// serializing sequence allocation per period.
	FindByDateForUpdate(ctx context.Context, tx Transaction, tenantID string, date time.Time) (*domain.FinancialPeriod, error)
	// AllocateSequence increments and returns the period's gap-free
	// posting sequence. Callers must hold the period row lock.
	AllocateSequence(ctx context.Context, tx Transaction, periodID string) (int64, error)
	// GetByIDForUpdate locks the period row for the duration of tx so a
	// lifecycle transition cannot race a concurrent posting.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.FinancialPeriod, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.PeriodStatus, updatedAt time.Time, updatedBy string) error
	ListByFiscalYear(ctx context.Context, tenantID string, fiscalYear int) ([]*domain.FinancialPeriod, error)
}

// StatementRepository defines data access for bank statements.
type StatementRepository interface {
	Create(ctx context.Context, tx Transaction, statement *domain.BankStatement) error
	GetByID(ctx context.Context, id string) (*domain.BankStatement, error)
	MarkLinesReconciled(ctx context.Context, tx Transaction, lineIDs []string) error
}

// ReconciliationRepository defines data access for bank reconciliations,
// their items and the tenant's matching rules.
type ReconciliationRepository interface {
	Create(ctx context.Context, tx Transaction, recon *domain.BankReconciliation) error
	GetByID(ctx context.Context, id string) (*domain.BankReconciliation, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReconciliationStatus, variance decimal.Decimal, updatedAt time.Time, updatedBy string) error
	CreateItem(ctx context.Context, item *domain.ReconciliationItem) error
	ListRules(ctx context.Context, tenantID string) ([]domain.MatchRule, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries transient storage failures with backoff.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage. Keys are scoped per
// tenant; the same key from two tenants never collides.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if the tenant's key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) error
}

// AccountMovement is the per-account aggregation a trial balance folds over:
// debit/credit sums before the range start and inside the range.
type AccountMovement struct {
	AccountID      string
	OpeningDebits  decimal.Decimal
	OpeningCredits decimal.Decimal
	PeriodDebits   decimal.Decimal
	PeriodCredits  decimal.Decimal
}

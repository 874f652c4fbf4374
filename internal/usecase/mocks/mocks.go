package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc      func(ctx context.Context, account *domain.Account) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Account, error)
	GetByCodeFunc   func(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByCodesFunc  func(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error)
	ListSubtreeFunc func(ctx context.Context, tenantID, path string) ([]*domain.Account, error)
	ListFunc        func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
	UpdateFunc      func(ctx context.Context, account *domain.Account) error
	SetActiveFunc   func(ctx context.Context, id string, active bool, updatedAt time.Time, updatedBy string) error
	HasPostingsFunc func(ctx context.Context, accountID string) (bool, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tenantID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.TenantID == tenantID && acc.Code == code {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error) {
	if m.GetByCodesFunc != nil {
		return m.GetByCodesFunc(ctx, tenantID, codes)
	}
	var out []*domain.Account
	for _, code := range codes {
		acc, err := m.GetByCode(ctx, tenantID, code)
		if err != nil {
			continue
		}
		out = append(out, acc)
	}
	return out, nil
}

func (m *MockAccountRepository) ListSubtree(ctx context.Context, tenantID, path string) ([]*domain.Account, error) {
	if m.ListSubtreeFunc != nil {
		return m.ListSubtreeFunc(ctx, tenantID, path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, acc := range m.accounts {
		if acc.TenantID == tenantID && (acc.Path == path || strings.HasPrefix(acc.Path, path+"/")) {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, acc := range m.accounts {
		if acc.TenantID == tenantID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time, updatedBy string) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt, updatedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.IsActive = active
	acc.Audit.UpdatedAt = updatedAt
	acc.Audit.UpdatedBy = updatedBy
	return nil
}

func (m *MockAccountRepository) HasPostings(ctx context.Context, accountID string) (bool, error) {
	if m.HasPostingsFunc != nil {
		return m.HasPostingsFunc(ctx, accountID)
	}
	return false, nil
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	// Defaults for read-side aggregations the in-memory store does not derive.
	Movements   []usecase.AccountMovement
	Book        []domain.BookTransaction
	BookBalance decimal.Decimal

	CreateEntryFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error
	GetEntryFunc           func(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListByPeriodFunc       func(ctx context.Context, tenantID, periodID string, limit, offset int) ([]*domain.JournalEntry, error)
	MarkReversedFunc       func(ctx context.Context, tx usecase.Transaction, id, reversedBy string, updatedAt time.Time) error
	CountUnpostedFunc      func(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error)
	PeriodTotalsFunc       func(ctx context.Context, tx usecase.Transaction, periodID string) (int64, decimal.Decimal, decimal.Decimal, error)
	MovementsByAccountFunc func(ctx context.Context, tenantID string, start, end time.Time) ([]usecase.AccountMovement, error)
	BookTransactionsFunc   func(ctx context.Context, accountID string, start, end time.Time) ([]domain.BookTransaction, error)
	BookBalanceAsOfFunc    func(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		entries:     make(map[string]*domain.JournalEntry),
		BookBalance: decimal.Zero,
	}
}

func (m *MockJournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	if m.CreateEntryFunc != nil {
		return m.CreateEntryFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockJournalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetEntryFunc != nil {
		return m.GetEntryFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockJournalRepository) ListByPeriod(ctx context.Context, tenantID, periodID string, limit, offset int) ([]*domain.JournalEntry, error) {
	if m.ListByPeriodFunc != nil {
		return m.ListByPeriodFunc(ctx, tenantID, periodID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.JournalEntry
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.PeriodID == periodID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockJournalRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id, reversedBy string, updatedAt time.Time) error {
	if m.MarkReversedFunc != nil {
		return m.MarkReversedFunc(ctx, tx, id, reversedBy, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.Status = domain.EntryStatusReversed
	e.ReversedBy = reversedBy
	e.Audit.UpdatedAt = updatedAt
	return nil
}

func (m *MockJournalRepository) CountUnposted(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error) {
	if m.CountUnpostedFunc != nil {
		return m.CountUnpostedFunc(ctx, tx, periodID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.entries {
		if e.PeriodID == periodID &&
			(e.Status == domain.EntryStatusDraft || e.Status == domain.EntryStatusPendingApproval) {
			n++
		}
	}
	return n, nil
}

func (m *MockJournalRepository) PeriodTotals(ctx context.Context, tx usecase.Transaction, periodID string) (int64, decimal.Decimal, decimal.Decimal, error) {
	if m.PeriodTotalsFunc != nil {
		return m.PeriodTotalsFunc(ctx, tx, periodID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.PeriodID != periodID || (e.Status != domain.EntryStatusPosted && e.Status != domain.EntryStatusReversed) {
			continue
		}
		count++
		d, c := e.Totals()
		debits = debits.Add(d)
		credits = credits.Add(c)
	}
	return count, debits, credits, nil
}

func (m *MockJournalRepository) MovementsByAccount(ctx context.Context, tenantID string, start, end time.Time) ([]usecase.AccountMovement, error) {
	if m.MovementsByAccountFunc != nil {
		return m.MovementsByAccountFunc(ctx, tenantID, start, end)
	}
	return m.Movements, nil
}

func (m *MockJournalRepository) BookTransactions(ctx context.Context, accountID string, start, end time.Time) ([]domain.BookTransaction, error) {
	if m.BookTransactionsFunc != nil {
		return m.BookTransactionsFunc(ctx, accountID, start, end)
	}
	return m.Book, nil
}

func (m *MockJournalRepository) BookBalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	if m.BookBalanceAsOfFunc != nil {
		return m.BookBalanceAsOfFunc(ctx, accountID, asOf)
	}
	return m.BookBalance, nil
}

// MockPeriodRepository is a mock implementation of PeriodRepository.
type MockPeriodRepository struct {
	mu      sync.RWMutex
	periods map[string]*domain.FinancialPeriod

	CreateFunc              func(ctx context.Context, period *domain.FinancialPeriod) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.FinancialPeriod, error)
	FindByDateFunc          func(ctx context.Context, tenantID string, date time.Time) (*domain.FinancialPeriod, error)
	FindByDateForUpdateFunc func(ctx context.Context, tx usecase.Transaction, tenantID string, date time.Time) (*domain.FinancialPeriod, error)
	GetByIDForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error)
	AllocateSequenceFunc    func(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, status domain.PeriodStatus, updatedAt time.Time, updatedBy string) error
	ListByFiscalYearFunc    func(ctx context.Context, tenantID string, fiscalYear int) ([]*domain.FinancialPeriod, error)
}

func NewMockPeriodRepository() *MockPeriodRepository {
	return &MockPeriodRepository{
		periods: make(map[string]*domain.FinancialPeriod),
	}
}

func (m *MockPeriodRepository) Create(ctx context.Context, period *domain.FinancialPeriod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = period
	return nil
}

func (m *MockPeriodRepository) GetByID(ctx context.Context, id string) (*domain.FinancialPeriod, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) FindByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FinancialPeriod, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, tenantID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.TenantID == tenantID && p.Contains(date) {
			return p, nil
		}
	}
	return nil, domain.ErrPeriodNotFound
}

func (m *MockPeriodRepository) FindByDateForUpdate(ctx context.Context, tx usecase.Transaction, tenantID string, date time.Time) (*domain.FinancialPeriod, error) {
	if m.FindByDateForUpdateFunc != nil {
		return m.FindByDateForUpdateFunc(ctx, tx, tenantID, date)
	}
	return m.FindByDate(ctx, tenantID, date)
}

func (m *MockPeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPeriodRepository) AllocateSequence(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error) {
	if m.AllocateSequenceFunc != nil {
		return m.AllocateSequenceFunc(ctx, tx, periodID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[periodID]
	if !ok {
		return 0, domain.ErrPeriodNotFound
	}
	seq := p.NextSequence
	p.NextSequence++
	return seq, nil
}

func (m *MockPeriodRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.PeriodStatus, updatedAt time.Time, updatedBy string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt, updatedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[id]
	if !ok {
		return domain.ErrPeriodNotFound
	}
	p.Status = status
	p.Audit.UpdatedAt = updatedAt
	p.Audit.UpdatedBy = updatedBy
	return nil
}

func (m *MockPeriodRepository) ListByFiscalYear(ctx context.Context, tenantID string, fiscalYear int) ([]*domain.FinancialPeriod, error) {
	if m.ListByFiscalYearFunc != nil {
		return m.ListByFiscalYearFunc(ctx, tenantID, fiscalYear)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.FinancialPeriod
	for _, p := range m.periods {
		if p.TenantID == tenantID && p.FiscalYear == fiscalYear {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockStatementRepository is a mock implementation of StatementRepository.
type MockStatementRepository struct {
	mu         sync.RWMutex
	statements map[string]*domain.BankStatement

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.BankStatement, error)
	MarkLinesReconciledFunc func(ctx context.Context, tx usecase.Transaction, lineIDs []string) error
}

func NewMockStatementRepository() *MockStatementRepository {
	return &MockStatementRepository{
		statements: make(map[string]*domain.BankStatement),
	}
}

func (m *MockStatementRepository) Create(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, statement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements[statement.ID] = statement
	return nil
}

func (m *MockStatementRepository) GetByID(ctx context.Context, id string) (*domain.BankStatement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.statements[id]; ok {
		return s, nil
	}
	return nil, domain.ErrStatementNotFound
}

func (m *MockStatementRepository) MarkLinesReconciled(ctx context.Context, tx usecase.Transaction, lineIDs []string) error {
	if m.MarkLinesReconciledFunc != nil {
		return m.MarkLinesReconciledFunc(ctx, tx, lineIDs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		want[id] = true
	}
	for _, s := range m.statements {
		for i := range s.Lines {
			if want[s.Lines[i].ID] {
				s.Lines[i].Reconciled = true
			}
		}
	}
	return nil
}

// MockReconciliationRepository is a mock implementation of ReconciliationRepository.
type MockReconciliationRepository struct {
	mu    sync.RWMutex
	recs  map[string]*domain.BankReconciliation
	Rules []domain.MatchRule

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, recon *domain.BankReconciliation) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.BankReconciliation, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.ReconciliationStatus, variance decimal.Decimal, updatedAt time.Time, updatedBy string) error
	CreateItemFunc   func(ctx context.Context, item *domain.ReconciliationItem) error
	ListRulesFunc    func(ctx context.Context, tenantID string) ([]domain.MatchRule, error)
}

func NewMockReconciliationRepository() *MockReconciliationRepository {
	return &MockReconciliationRepository{
		recs: make(map[string]*domain.BankReconciliation),
	}
}

func (m *MockReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, recon *domain.BankReconciliation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, recon)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[recon.ID] = recon
	return nil
}

func (m *MockReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.BankReconciliation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.recs[id]; ok {
		return r, nil
	}
	return nil, domain.ErrReconciliationNotFound
}

func (m *MockReconciliationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReconciliationStatus, variance decimal.Decimal, updatedAt time.Time, updatedBy string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, variance, updatedAt, updatedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return domain.ErrReconciliationNotFound
	}
	r.Status = status
	r.Variance = variance
	r.Audit.UpdatedAt = updatedAt
	r.Audit.UpdatedBy = updatedBy
	return nil
}

func (m *MockReconciliationRepository) CreateItem(ctx context.Context, item *domain.ReconciliationItem) error {
	if m.CreateItemFunc != nil {
		return m.CreateItemFunc(ctx, item)
	}
	return nil
}

func (m *MockReconciliationRepository) ListRules(ctx context.Context, tenantID string) ([]domain.MatchRule, error) {
	if m.ListRulesFunc != nil {
		return m.ListRulesFunc(ctx, tenantID)
	}
	return m.Rules, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	return nil
}

// EventsOfType returns recorded events matching eventType.
func (m *MockOutboxRepository) EventsOfType(eventType string) []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
	ListFunc   func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Logs, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the
// operation once without backoff.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is a mock implementation of Cache backed by a map.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	SetNXFunc  func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("cache miss: %s", key)
	}
	return val, nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, tenantID, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	scoped := tenantID + ":" + key
	if existing, ok := m.data[scoped]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[scoped] = response
	} else {
		m.data[scoped] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tenantID, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantID+":"+key] = response
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// PeriodUseCase handles financial period lifecycle.
type PeriodUseCase struct {
	periodRepo  PeriodRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	txManager   TransactionManager
	idGen       IDGenerator
	epsilon     decimal.Decimal

	// closing guards concurrent close attempts per period id.
	mu      sync.Mutex
	closing map[string]*sync.Mutex
}

// NewPeriodUseCase creates a new PeriodUseCase.
func NewPeriodUseCase(
	periodRepo PeriodRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	txManager TransactionManager,
	idGen IDGenerator,
) *PeriodUseCase {
	return &PeriodUseCase{
		periodRepo:  periodRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		idGen:       idGen,
		epsilon:     domain.BalanceEpsilon,
		closing:     make(map[string]*sync.Mutex),
	}
}

// CreatePeriodInput represents input for creating a financial period.
type CreatePeriodInput struct {
	Code        string
	StartDate   time.Time
	EndDate     time.Time
	FiscalYear  int
	FiscalMonth int
}

// CreatePeriod creates an Open period after checking that it neither
// overlaps nor leaves a gap against the fiscal year's existing periods.
func (uc *PeriodUseCase) CreatePeriod(ctx context.Context, actor domain.Actor, input CreatePeriodInput) (*domain.FinancialPeriod, error) {
	if input.Code == "" {
		return nil, fmt.Errorf("%w: period code is required", domain.ErrValidation)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: period end date must be after start date", domain.ErrValidation)
	}
	if input.FiscalMonth < 1 || input.FiscalMonth > 13 {
		return nil, fmt.Errorf("%w: fiscal month must be between 1 and 13", domain.ErrValidation)
	}

	period := &domain.FinancialPeriod{
		ID:           uc.idGen.Generate(),
		TenantID:     actor.TenantID,
		Code:         input.Code,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		FiscalYear:   input.FiscalYear,
		FiscalMonth:  input.FiscalMonth,
		Status:       domain.PeriodStatusOpen,
		NextSequence: 1,
		Audit: domain.AuditFields{
			CreatedAt: time.Now().UTC(),
			CreatedBy: actor.UserID,
			UpdatedAt: time.Now().UTC(),
			UpdatedBy: actor.UserID,
		},
	}

	existing, err := uc.periodRepo.ListByFiscalYear(ctx, actor.TenantID, input.FiscalYear)
	if err != nil {
		return nil, err
	}
	var latest *domain.FinancialPeriod
	for _, p := range existing {
		if p.Overlaps(period) {
			return nil, fmt.Errorf("%w: period %s overlaps %s", domain.ErrPeriodOverlap, period.Code, p.Code)
		}
		if latest == nil || p.EndDate.After(latest.EndDate) {
			latest = p
		}
	}
	if latest != nil && !period.StartDate.Equal(latest.EndDate.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("%w: period %s must start the day after %s ends", domain.ErrValidation, period.Code, latest.Code)
	}

	if err := uc.periodRepo.Create(ctx, period); err != nil {
		return nil, err
	}
	return period, nil
}

// GetPeriod retrieves a period by id.
func (uc *PeriodUseCase) GetPeriod(ctx context.Context, tenantID, id string) (*domain.FinancialPeriod, error) {
	period, err := uc.periodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if period.TenantID != tenantID {
		return nil, domain.ErrPeriodNotFound
	}
	return period, nil
}

// IsOpenForPosting reports whether the period containing date accepts postings.
func (uc *PeriodUseCase) IsOpenForPosting(ctx context.Context, tenantID string, date time.Time) (bool, error) {
	period, err := uc.periodRepo.FindByDate(ctx, tenantID, date)
	if err != nil {
		return false, err
	}
	return period.Status == domain.PeriodStatusOpen, nil
}

// ClosePeriod transitions an Open period to Closed.
//
// Only one close may run per period at a time; a concurrent attempt fails
// fast with ErrPeriodCloseInProgress instead of queueing. The close is
// refused while Draft or PendingApproval entries remain in the period.
// The summary reports the period's totals and whether they balance; an
// imbalance indicates corrupted history and is surfaced on the summary
// rather than blocking the close.
func (uc *PeriodUseCase) ClosePeriod(ctx context.Context, actor domain.Actor, periodID string) (*domain.ClosingSummary, error) {
	lock := uc.closeLock(periodID)
	if !lock.TryLock() {
		return nil, fmt.Errorf("%w: period %s", domain.ErrPeriodCloseInProgress, periodID)
	}
	defer lock.Unlock()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The row lock serializes against in-flight postings, so the totals
	// below describe exactly the state the flip commits over.
	period, err := uc.periodRepo.GetByIDForUpdate(ctx, tx, periodID)
	if err != nil {
		return nil, err
	}
	if period.TenantID != actor.TenantID {
		return nil, domain.ErrPeriodNotFound
	}
	if err := period.CanTransition(domain.PeriodStatusClosed); err != nil {
		return nil, err
	}

	unposted, err := uc.journalRepo.CountUnposted(ctx, tx, period.ID)
	if err != nil {
		return nil, err
	}
	if unposted > 0 {
		return nil, fmt.Errorf("%w: %d entries in period %s", domain.ErrUnpostedEntriesExist, unposted, period.Code)
	}

	count, debits, credits, err := uc.journalRepo.PeriodTotals(ctx, tx, period.ID)
	if err != nil {
		return nil, err
	}
	balanced := debits.Sub(credits).Abs().LessThanOrEqual(uc.epsilon)

	now := time.Now().UTC()
	if err := uc.periodRepo.UpdateStatus(ctx, tx, period.ID, domain.PeriodStatusClosed, now, actor.UserID); err != nil {
		return nil, err
	}

	if err := uc.emitPeriodEvent(ctx, tx, actor, period, domain.EventTypePeriodClosed, domain.MarshalState(domain.PeriodClosedEvent{
		PeriodID:     period.ID,
		PeriodCode:   period.Code,
		EntryCount:   count,
		TotalDebits:  debits.String(),
		TotalCredits: credits.String(),
	})); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.writeAudit(ctx, actor, domain.AuditActionPeriodClose, period.ID, period.Code, "")

	return &domain.ClosingSummary{
		PeriodID:     period.ID,
		PeriodCode:   period.Code,
		EntryCount:   count,
		TotalDebits:  debits.String(),
		TotalCredits: credits.String(),
		Balanced:     balanced,
		ClosedAt:     now,
	}, nil
}

// ReopenPeriod transitions a Closed period back to Open. The operation is
// privileged and always audited with the caller's reason.
func (uc *PeriodUseCase) ReopenPeriod(ctx context.Context, actor domain.Actor, periodID, reason string) (*domain.FinancialPeriod, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: reopen reason is required", domain.ErrValidation)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	period, err := uc.periodRepo.GetByIDForUpdate(ctx, tx, periodID)
	if err != nil {
		return nil, err
	}
	if period.TenantID != actor.TenantID {
		return nil, domain.ErrPeriodNotFound
	}
	if err := period.CanTransition(domain.PeriodStatusOpen); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.periodRepo.UpdateStatus(ctx, tx, period.ID, domain.PeriodStatusOpen, now, actor.UserID); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodStatusOpen
	period.Audit.UpdatedAt = now
	period.Audit.UpdatedBy = actor.UserID

	if err := uc.emitPeriodEvent(ctx, tx, actor, period, domain.EventTypePeriodReopened, domain.MarshalState(domain.PeriodReopenedEvent{
		PeriodID:   period.ID,
		PeriodCode: period.Code,
		Reason:     reason,
		ReopenedBy: actor.UserID,
	})); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.writeAudit(ctx, actor, domain.AuditActionPeriodReopen, period.ID, period.Code, reason)

	return period, nil
}

// LockPeriod transitions a Closed period to Locked. Locked is terminal.
func (uc *PeriodUseCase) LockPeriod(ctx context.Context, actor domain.Actor, periodID string) (*domain.FinancialPeriod, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	period, err := uc.periodRepo.GetByIDForUpdate(ctx, tx, periodID)
	if err != nil {
		return nil, err
	}
	if period.TenantID != actor.TenantID {
		return nil, domain.ErrPeriodNotFound
	}
	if err := period.CanTransition(domain.PeriodStatusLocked); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.periodRepo.UpdateStatus(ctx, tx, period.ID, domain.PeriodStatusLocked, now, actor.UserID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	period.Status = domain.PeriodStatusLocked
	period.Audit.UpdatedAt = now
	period.Audit.UpdatedBy = actor.UserID

	uc.writeAudit(ctx, actor, domain.AuditActionPeriodLock, period.ID, period.Code, "")
	return period, nil
}

// ListPeriods lists a fiscal year's periods.
func (uc *PeriodUseCase) ListPeriods(ctx context.Context, tenantID string, fiscalYear int) ([]*domain.FinancialPeriod, error) {
	return uc.periodRepo.ListByFiscalYear(ctx, tenantID, fiscalYear)
}

func (uc *PeriodUseCase) closeLock(periodID string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	lock, ok := uc.closing[periodID]
	if !ok {
		lock = &sync.Mutex{}
		uc.closing[periodID] = lock
	}
	return lock
}

// emitPeriodEvent writes the lifecycle event into the caller's
// transaction so the status flip and its event commit or fail together.
func (uc *PeriodUseCase) emitPeriodEvent(ctx context.Context, tx Transaction, actor domain.Actor, period *domain.FinancialPeriod, eventType string, payload map[string]any) error {
	if uc.outboxRepo == nil {
		return nil
	}
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      actor.TenantID,
		AggregateID:   period.ID,
		AggregateType: domain.AggregateTypePeriod,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	})
}

func (uc *PeriodUseCase) writeAudit(ctx context.Context, actor domain.Actor, action domain.AuditAction, periodID, periodCode, reason string) {
	if uc.auditRepo == nil {
		return
	}
	state := domain.JSON{"period_code": periodCode}
	if reason != "" {
		state["reason"] = reason
	}
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		TenantID:     actor.TenantID,
		UserID:       actor.UserID,
		Action:       string(action),
		ResourceType: domain.AggregateTypePeriod,
		ResourceID:   periodID,
		AfterState:   state,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}

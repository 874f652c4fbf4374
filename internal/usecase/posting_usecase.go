package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// PostingUseCase handles journal entry posting and reversal.
type PostingUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	accountRepo AccountRepository
	journalRepo JournalRepository
	periodRepo  PeriodRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	epsilon     decimal.Decimal
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	retrier Retrier,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	periodRepo PeriodRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:   txManager,
		retrier:     retrier,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		periodRepo:  periodRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		epsilon:     domain.BalanceEpsilon,
	}
}

// PostEntryLineInput is one debit or credit of a posting request.
type PostEntryLineInput struct {
	AccountCode  string
	Direction    domain.Direction
	Amount       decimal.Decimal
	Currency     string
	ExchangeRate decimal.Decimal
	Reference    string
}

// PostEntryInput represents input for posting a journal entry.
type PostEntryInput struct {
	EntryDate    time.Time
	SourceModule string
	Description  string
	Lines        []PostEntryLineInput
}

// PostEntry atomically posts a balanced journal entry.
//
// The entry's period is resolved from the entry date and row-locked for
// the duration of the transaction, which serializes reference sequence
// allocation per period and guarantees gap-free sequences. Transient
// storage conflicts (deadlock, serialization failure) retry the whole
// transaction.
func (uc *PostingUseCase) PostEntry(ctx context.Context, actor domain.Actor, input PostEntryInput) (*domain.JournalEntry, error) {
	if len(input.Lines) < 2 {
		return nil, fmt.Errorf("%w: entry must have at least two lines", domain.ErrValidation)
	}

	codes := make([]string, 0, len(input.Lines))
	seen := make(map[string]bool, len(input.Lines))
	for _, li := range input.Lines {
		if err := domain.ValidateAmount(li.Amount); err != nil {
			return nil, err
		}
		if !seen[li.AccountCode] {
			seen[li.AccountCode] = true
			codes = append(codes, li.AccountCode)
		}
	}

	accounts, err := uc.accountRepo.GetByCodes(ctx, actor.TenantID, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	for _, code := range codes {
		account, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, code)
		}
		if !account.CanReceivePostings() {
			return nil, fmt.Errorf("%w: account %s cannot receive postings", domain.ErrValidation, code)
		}
	}

	now := time.Now().UTC()
	entry := &domain.JournalEntry{
		ID:           uc.idGen.Generate(),
		TenantID:     actor.TenantID,
		EntryDate:    input.EntryDate,
		Status:       domain.EntryStatusPosted,
		SourceModule: input.SourceModule,
		Description:  input.Description,
		Lines:        make([]domain.JournalEntryLine, len(input.Lines)),
		Audit: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: actor.UserID,
			UpdatedAt: now,
			UpdatedBy: actor.UserID,
		},
	}
	for i, li := range input.Lines {
		account := byCode[li.AccountCode]
		line := domain.JournalEntryLine{
			ID:           uc.idGen.Generate(),
			EntryID:      entry.ID,
			AccountID:    account.ID,
			AccountCode:  account.Code,
			Direction:    li.Direction,
			Amount:       li.Amount,
			Currency:     li.Currency,
			ExchangeRate: li.ExchangeRate,
			Reference:    li.Reference,
			CreatedAt:    now,
		}
		if line.Currency == "" {
			line.Currency = account.Currency
		}
		line.BaseAmount = line.BaseValue()
		entry.Lines[i] = line
	}

	if err := entry.ValidateBalanced(uc.epsilon); err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.postTx(ctx, actor, entry, EntryRefPrefix)
	})
	if err != nil {
		return nil, err
	}

	uc.writeAudit(ctx, actor, domain.AuditActionEntryPost, entry.ID, entry)
	return entry, nil
}

// ReverseEntry posts a reversing entry for a posted entry and marks the
// original as reversed. The reversal lands in the original entry's period,
// so it fails with ErrPeriodClosed once that period has been closed.
// Reversing an already reversed entry fails rather than double-reversing.
func (uc *PostingUseCase) ReverseEntry(ctx context.Context, actor domain.Actor, entryID, description string) (*domain.JournalEntry, error) {
	original, err := uc.journalRepo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.TenantID != actor.TenantID {
		return nil, domain.ErrEntryNotFound
	}
	if original.Status != domain.EntryStatusPosted {
		return nil, fmt.Errorf("%w: entry %s has status %s", domain.ErrValidation, original.Reference, original.Status)
	}
	if original.ReversedBy != "" {
		return nil, fmt.Errorf("%w: entry %s already reversed", domain.ErrValidation, original.Reference)
	}

	now := time.Now().UTC()
	reversal := original.Reversal(original.EntryDate)
	reversal.ID = uc.idGen.Generate()
	reversal.Status = domain.EntryStatusPosted
	if description != "" {
		reversal.Description = description
	}
	reversal.Audit = domain.AuditFields{
		CreatedAt: now,
		CreatedBy: actor.UserID,
		UpdatedAt: now,
		UpdatedBy: actor.UserID,
	}
	for i := range reversal.Lines {
		reversal.Lines[i].ID = uc.idGen.Generate()
		reversal.Lines[i].EntryID = reversal.ID
		reversal.Lines[i].CreatedAt = now
	}

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		period, err := uc.periodRepo.FindByDateForUpdate(ctx, tx, actor.TenantID, reversal.EntryDate)
		if err != nil {
			return err
		}
		if period.Status != domain.PeriodStatusOpen {
			return fmt.Errorf("%w: period %s is %s", domain.ErrPeriodClosed, period.Code, period.Status)
		}

		seq, err := uc.periodRepo.AllocateSequence(ctx, tx, period.ID)
		if err != nil {
			return err
		}
		reversal.PeriodID = period.ID
		reversal.Reference = formatReference(ReversalRefPrefix, period.Code, seq)

		if err := uc.journalRepo.CreateEntry(ctx, tx, &reversal); err != nil {
			return err
		}
		if err := uc.journalRepo.MarkReversed(ctx, tx, original.ID, reversal.ID, now); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			TenantID:      actor.TenantID,
			AggregateID:   reversal.ID,
			AggregateType: domain.AggregateTypeEntry,
			EventType:     domain.EventTypeEntryReversed,
			Payload: domain.MarshalState(domain.EntryReversedEvent{
				ReversalEntryID: reversal.ID,
				OriginalEntryID: original.ID,
				Reference:       reversal.Reference,
			}),
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	original.Status = domain.EntryStatusReversed
	original.ReversedBy = reversal.ID

	uc.writeAudit(ctx, actor, domain.AuditActionEntryReverse, reversal.ID, &reversal)
	return &reversal, nil
}

// GetEntry retrieves a journal entry with its lines.
func (uc *PostingUseCase) GetEntry(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	entry, err := uc.journalRepo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.TenantID != tenantID {
		return nil, domain.ErrEntryNotFound
	}
	return entry, nil
}

// ListEntries lists entries posted to one of the tenant's periods.
func (uc *PostingUseCase) ListEntries(ctx context.Context, tenantID, periodID string, limit, offset int) ([]*domain.JournalEntry, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.journalRepo.ListByPeriod(ctx, tenantID, periodID, limit, offset)
}

func (uc *PostingUseCase) postTx(ctx context.Context, actor domain.Actor, entry *domain.JournalEntry, prefix string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	period, err := uc.periodRepo.FindByDateForUpdate(ctx, tx, actor.TenantID, entry.EntryDate)
	if err != nil {
		return err
	}
	if period.Status != domain.PeriodStatusOpen {
		return fmt.Errorf("%w: period %s is %s", domain.ErrPeriodClosed, period.Code, period.Status)
	}

	seq, err := uc.periodRepo.AllocateSequence(ctx, tx, period.ID)
	if err != nil {
		return err
	}
	entry.PeriodID = period.ID
	entry.Reference = formatReference(prefix, period.Code, seq)

	if err := uc.journalRepo.CreateEntry(ctx, tx, entry); err != nil {
		return err
	}

	amounts := make(map[string]string, len(entry.Lines))
	accountIDs := make([]string, 0, len(entry.Lines))
	for i := range entry.Lines {
		l := &entry.Lines[i]
		signed := l.BaseValue()
		if l.Direction == domain.Credit {
			signed = signed.Neg()
		}
		if prev, ok := amounts[l.AccountID]; ok {
			signed = signed.Add(decimal.RequireFromString(prev))
		} else {
			accountIDs = append(accountIDs, l.AccountID)
		}
		amounts[l.AccountID] = signed.String()
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      actor.TenantID,
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryPosted,
		Payload: domain.MarshalState(domain.EntryPostedEvent{
			EntryID:    entry.ID,
			Reference:  entry.Reference,
			PeriodCode: period.Code,
			AccountIDs: accountIDs,
			Amounts:    amounts,
			EntryDate:  entry.EntryDate.Format("2006-01-02"),
		}),
		CreatedAt: entry.Audit.CreatedAt,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *PostingUseCase) writeAudit(ctx context.Context, actor domain.Actor, action domain.AuditAction, entityID string, state any) {
	if uc.auditRepo == nil {
		return
	}
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		TenantID:     actor.TenantID,
		UserID:       actor.UserID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeEntry,
		ResourceID:   entityID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}

func formatReference(prefix, periodCode string, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, periodCode, seq)
}

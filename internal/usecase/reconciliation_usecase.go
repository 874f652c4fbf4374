package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/matching"
)

// ReconciliationUseCase handles bank reconciliation sessions.
type ReconciliationUseCase struct {
	txManager     TransactionManager
	reconRepo     ReconciliationRepository
	statementRepo StatementRepository
	journalRepo   JournalRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
	cache         Cache
	matchCfg      matching.Config
	epsilon       decimal.Decimal
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	reconRepo ReconciliationRepository,
	statementRepo StatementRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	matchCfg matching.Config,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:     txManager,
		reconRepo:     reconRepo,
		statementRepo: statementRepo,
		journalRepo:   journalRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
		cache:         cache,
		matchCfg:      matchCfg,
		epsilon:       domain.BalanceEpsilon,
	}
}

// RunMatchingResult is one completed matching pass: the stored session
// plus the per-line match decisions, which are recomputed on each run
// rather than persisted.
type RunMatchingResult struct {
	Reconciliation *domain.BankReconciliation
	Matches        []domain.ReconciliationMatch
	MatchedLines   int
	UnmatchedLines int
}

// RunMatching executes a matching pass over a statement and persists the
// resulting reconciliation session with its reconciling items. The pass
// itself is pure; a cancelled ctx aborts before anything is written.
func (uc *ReconciliationUseCase) RunMatching(ctx context.Context, actor domain.Actor, statementID string) (*RunMatchingResult, error) {
	statement, err := uc.statementRepo.GetByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if statement.TenantID != actor.TenantID {
		return nil, domain.ErrStatementNotFound
	}

	// Book transactions are read over a window widened by the fuzzy date
	// tolerance so near-boundary postings stay matchable.
	window := time.Duration(uc.matchCfg.DateWindowDays) * 24 * time.Hour
	book, err := uc.journalRepo.BookTransactions(ctx, statement.BankAccountID,
		statement.StartDate.Add(-window), statement.EndDate.Add(window))
	if err != nil {
		return nil, err
	}
	bookBalance, err := uc.journalRepo.BookBalanceAsOf(ctx, statement.BankAccountID, statement.EndDate)
	if err != nil {
		return nil, err
	}
	rules, err := uc.loadRules(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	outcome, err := matching.Run(ctx, matching.Input{
		Statement: statement,
		Book:      book,
		Rules:     rules,
	}, uc.matchCfg)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recon := &domain.BankReconciliation{
		ID:             uc.idGen.Generate(),
		TenantID:       actor.TenantID,
		BankAccountID:  statement.BankAccountID,
		StatementID:    statement.ID,
		OpeningBalance: statement.OpeningBalance,
		ClosingBalance: statement.ClosingBalance,
		BookBalance:    bookBalance,
		Status:         domain.ReconciliationStatusInProgress,
		Items:          outcome.Items,
		Matches:        outcome.Matches,
		Audit: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: actor.UserID,
			UpdatedAt: now,
			UpdatedBy: actor.UserID,
		},
	}
	for i := range recon.Items {
		recon.Items[i].ID = uc.idGen.Generate()
		recon.Items[i].ReconciliationID = recon.ID
		recon.Items[i].CreatedAt = now
	}
	recon.Variance = domain.ComputeVariance(recon.ClosingBalance, recon.BookBalance, recon.Items)
	recon.ReconciledBalance = recon.ClosingBalance.Sub(recon.Variance)
	if recon.Variance.Abs().LessThanOrEqual(uc.epsilon) {
		recon.Status = domain.ReconciliationStatusReconciled
	}

	matchedLineIDs := make([]string, 0, outcome.MatchedLines)
	for _, m := range recon.Matches {
		if m.Type != domain.MatchUnmatched {
			matchedLineIDs = append(matchedLineIDs, m.StatementLineID)
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.reconRepo.Create(ctx, tx, recon); err != nil {
		return nil, err
	}
	if len(matchedLineIDs) > 0 {
		if err := uc.statementRepo.MarkLinesReconciled(ctx, tx, matchedLineIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &RunMatchingResult{
		Reconciliation: recon,
		Matches:        recon.Matches,
		MatchedLines:   outcome.MatchedLines,
		UnmatchedLines: outcome.UnmatchedLines,
	}, nil
}

// AddItemInput represents input for adding a manual reconciling item.
type AddItemInput struct {
	Type        domain.ItemType
	Description string
	Reference   string
	Date        time.Time
	Amount      decimal.Decimal
}

// AddItem records a manual reconciling item and recomputes the variance.
// The session flips to Reconciled as soon as the variance falls inside
// the tolerance.
func (uc *ReconciliationUseCase) AddItem(ctx context.Context, actor domain.Actor, reconID string, input AddItemInput) (*domain.BankReconciliation, error) {
	if input.Type != domain.ItemAdjustment && input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: item amount must be non-negative", domain.ErrValidation)
	}

	recon, err := uc.GetReconciliation(ctx, actor.TenantID, reconID)
	if err != nil {
		return nil, err
	}
	if recon.Status == domain.ReconciliationStatusApproved {
		return nil, fmt.Errorf("%w: reconciliation already approved", domain.ErrValidation)
	}

	item := domain.ReconciliationItem{
		ID:               uc.idGen.Generate(),
		ReconciliationID: recon.ID,
		Type:             input.Type,
		Description:      input.Description,
		Reference:        input.Reference,
		Date:             input.Date,
		Amount:           input.Amount,
		CreatedAt:        time.Now().UTC(),
	}
	if err := uc.reconRepo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	recon.Items = append(recon.Items, item)

	recon.Variance = domain.ComputeVariance(recon.ClosingBalance, recon.BookBalance, recon.Items)
	recon.ReconciledBalance = recon.ClosingBalance.Sub(recon.Variance)
	status := domain.ReconciliationStatusInProgress
	if recon.Variance.Abs().LessThanOrEqual(uc.epsilon) {
		status = domain.ReconciliationStatusReconciled
	}
	recon.Status = status

	now := time.Now().UTC()
	if err := uc.reconRepo.UpdateStatus(ctx, recon.ID, status, recon.Variance, now, actor.UserID); err != nil {
		return nil, err
	}
	recon.Audit.UpdatedAt = now
	recon.Audit.UpdatedBy = actor.UserID
	return recon, nil
}

// Approve finalizes a reconciliation. Approval is refused while an
// unexplained variance remains.
func (uc *ReconciliationUseCase) Approve(ctx context.Context, actor domain.Actor, reconID string) (*domain.BankReconciliation, error) {
	recon, err := uc.GetReconciliation(ctx, actor.TenantID, reconID)
	if err != nil {
		return nil, err
	}
	if recon.Status == domain.ReconciliationStatusApproved {
		return recon, nil
	}
	if !recon.CanApprove(uc.epsilon) {
		return nil, fmt.Errorf("%w: unexplained variance %s", domain.ErrReconciliationVariance, recon.Variance.String())
	}

	now := time.Now().UTC()
	if err := uc.reconRepo.UpdateStatus(ctx, recon.ID, domain.ReconciliationStatusApproved, recon.Variance, now, actor.UserID); err != nil {
		return nil, err
	}
	recon.Status = domain.ReconciliationStatusApproved
	recon.Audit.UpdatedAt = now
	recon.Audit.UpdatedBy = actor.UserID

	uc.emitApproved(ctx, actor, recon)
	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     actor.TenantID,
			UserID:       actor.UserID,
			Action:       string(domain.AuditActionReconApprove),
			ResourceType: domain.AggregateTypeReconciliation,
			ResourceID:   recon.ID,
			AfterState: domain.JSON{
				"statement_id": recon.StatementID,
				"variance":     recon.Variance.String(),
			},
			Status:    string(domain.AuditStatusSuccess),
			CreatedAt: now,
		})
	}
	return recon, nil
}

// GetReconciliation retrieves a reconciliation with its items.
func (uc *ReconciliationUseCase) GetReconciliation(ctx context.Context, tenantID, id string) (*domain.BankReconciliation, error) {
	recon, err := uc.reconRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recon.TenantID != tenantID {
		return nil, domain.ErrReconciliationNotFound
	}
	return recon, nil
}

// loadRules reads match rules through the cache when one is configured.
// Rules change rarely, so a short TTL keeps repeated matching passes off
// the database. Cache failures fall back to the repository.
func (uc *ReconciliationUseCase) loadRules(ctx context.Context, tenantID string) ([]domain.MatchRule, error) {
	cacheKey := "matchrules:" + tenantID
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var rules []domain.MatchRule
			if err := json.Unmarshal([]byte(raw), &rules); err == nil {
				return rules, nil
			}
		}
	}

	rules, err := uc.reconRepo.ListRules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if raw, err := json.Marshal(rules); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, string(raw), MatchRuleCacheTTL)
		}
	}
	return rules, nil
}

func (uc *ReconciliationUseCase) emitApproved(ctx context.Context, actor domain.Actor, recon *domain.BankReconciliation) {
	if uc.outboxRepo == nil {
		return
	}
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      actor.TenantID,
		AggregateID:   recon.ID,
		AggregateType: domain.AggregateTypeReconciliation,
		EventType:     domain.EventTypeReconciliationApproved,
		Payload: domain.MarshalState(domain.ReconciliationApprovedEvent{
			ReconciliationID: recon.ID,
			StatementID:      recon.StatementID,
			BankAccountID:    recon.BankAccountID,
			Variance:         recon.Variance.String(),
		}),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return
	}
	_ = tx.Commit(ctx)
}

package usecase

import (
	"context"
	"time"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/ingest"
)

// StatementUseCase handles bank statement ingestion.
type StatementUseCase struct {
	txManager     TransactionManager
	statementRepo StatementRepository
	accountRepo   AccountRepository
	outboxRepo    OutboxRepository
	auditRepo     AuditRepository
	idGen         IDGenerator
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	txManager TransactionManager,
	statementRepo StatementRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *StatementUseCase {
	return &StatementUseCase{
		txManager:     txManager,
		statementRepo: statementRepo,
		accountRepo:   accountRepo,
		outboxRepo:    outboxRepo,
		auditRepo:     auditRepo,
		idGen:         idGen,
	}
}

// ImportStatementInput represents input for importing a bank statement.
type ImportStatementInput struct {
	BankAccountID string
	Format        ingest.Format
	Raw           string
}

// ImportStatementResult is the stored statement plus per-row diagnostics
// for the rows the parser had to skip.
type ImportStatementResult struct {
	Statement   *domain.BankStatement
	SkippedRows int
	Diagnostics []ingest.RowDiagnostic
}

// ImportStatement parses raw statement data and persists it atomically.
// Malformed rows are skipped and reported; an import with zero valid rows
// fails outright. Cancelling ctx mid-parse leaves nothing persisted.
func (uc *StatementUseCase) ImportStatement(ctx context.Context, actor domain.Actor, input ImportStatementInput) (*ImportStatementResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.BankAccountID)
	if err != nil {
		return nil, err
	}
	if account.TenantID != actor.TenantID {
		return nil, domain.ErrAccountNotFound
	}

	parsed, err := ingest.Parse(ctx, input.Raw, input.Format)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	statement := &domain.BankStatement{
		ID:             uc.idGen.Generate(),
		TenantID:       actor.TenantID,
		BankAccountID:  input.BankAccountID,
		StartDate:      parsed.StartDate,
		EndDate:        parsed.EndDate,
		OpeningBalance: parsed.OpeningBalance,
		ClosingBalance: parsed.ClosingBalance,
		Lines:          parsed.Lines,
		Audit: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: actor.UserID,
			UpdatedAt: now,
			UpdatedBy: actor.UserID,
		},
	}
	for i := range statement.Lines {
		statement.Lines[i].ID = uc.idGen.Generate()
		statement.Lines[i].StatementID = statement.ID
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.statementRepo.Create(ctx, tx, statement); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		TenantID:      actor.TenantID,
		AggregateID:   statement.ID,
		AggregateType: domain.AggregateTypeStatement,
		EventType:     domain.EventTypeStatementImported,
		Payload: domain.MarshalState(domain.StatementImportedEvent{
			StatementID:   statement.ID,
			BankAccountID: statement.BankAccountID,
			LineCount:     len(statement.Lines),
			SkippedRows:   parsed.SkippedRows,
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			TenantID:     actor.TenantID,
			UserID:       actor.UserID,
			Action:       string(domain.AuditActionStatementImport),
			ResourceType: domain.AggregateTypeStatement,
			ResourceID:   statement.ID,
			AfterState: domain.JSON{
				"bank_account_id": statement.BankAccountID,
				"line_count":      len(statement.Lines),
				"skipped_rows":    parsed.SkippedRows,
			},
			Status:    string(domain.AuditStatusSuccess),
			CreatedAt: time.Now().UTC(),
		})
	}

	return &ImportStatementResult{
		Statement:   statement,
		SkippedRows: parsed.SkippedRows,
		Diagnostics: parsed.Diagnostics,
	}, nil
}

// GetStatement retrieves a statement with its lines.
func (uc *StatementUseCase) GetStatement(ctx context.Context, tenantID, id string) (*domain.BankStatement, error) {
	statement, err := uc.statementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if statement.TenantID != tenantID {
		return nil, domain.ErrStatementNotFound
	}
	return statement, nil
}

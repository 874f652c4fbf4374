package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/usecase"
)

// StatementRepository implements usecase.StatementRepository.
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new StatementRepository.
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

// Create inserts a statement and its lines inside the caller's transaction.
func (r *StatementRepository) Create(ctx context.Context, tx usecase.Transaction, statement *domain.BankStatement) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO bank_statements (
			id, tenant_id, bank_account_id, start_date, end_date,
			opening_balance, closing_balance, created_at, created_by, updated_at, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		statement.ID,
		statement.TenantID,
		statement.BankAccountID,
		timeToPgDate(statement.StartDate),
		timeToPgDate(statement.EndDate),
		decimalToNumeric(statement.OpeningBalance),
		decimalToNumeric(statement.ClosingBalance),
		timeToPgTimestamptz(statement.Audit.CreatedAt),
		statement.Audit.CreatedBy,
		timeToPgTimestamptz(statement.Audit.UpdatedAt),
		statement.Audit.UpdatedBy,
	)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range statement.Lines {
		l := &statement.Lines[i]
		batch.Queue(`
			INSERT INTO bank_statement_lines (
				id, statement_id, line_no, transaction_date, description, reference,
				debit_amount, credit_amount, running_balance, reconciled
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.ID,
			l.StatementID,
			l.LineNo,
			timeToPgDate(l.TransactionDate),
			l.Description,
			textOrNull(l.Reference),
			decimalToNumeric(l.DebitAmount),
			decimalToNumeric(l.CreditAmount),
			decimalToNumeric(l.RunningBalance),
			l.Reconciled,
		)
	}
	return pgxTx.SendBatch(ctx, batch).Close()
}

// GetByID retrieves a statement with its lines in statement order.
func (r *StatementRepository) GetByID(ctx context.Context, id string) (*domain.BankStatement, error) {
	var s domain.BankStatement
	var opening, closing pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, bank_account_id, start_date, end_date,
		       opening_balance, closing_balance, created_at, created_by, updated_at, updated_by
		FROM bank_statements WHERE id = $1`, id).
		Scan(&s.ID, &s.TenantID, &s.BankAccountID, &s.StartDate, &s.EndDate,
			&opening, &closing,
			&s.Audit.CreatedAt, &s.Audit.CreatedBy, &s.Audit.UpdatedAt, &s.Audit.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatementNotFound
		}
		return nil, err
	}
	s.OpeningBalance = numericToDecimal(opening)
	s.ClosingBalance = numericToDecimal(closing)

	rows, err := r.pool.Query(ctx, `
		SELECT id, statement_id, line_no, transaction_date, description, reference,
		       debit_amount, credit_amount, running_balance, reconciled
		FROM bank_statement_lines
		WHERE statement_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.BankStatementLine
		var ref *string
		var debit, credit, balance pgtype.Numeric
		if err := rows.Scan(&l.ID, &l.StatementID, &l.LineNo, &l.TransactionDate, &l.Description,
			&ref, &debit, &credit, &balance, &l.Reconciled); err != nil {
			return nil, err
		}
		if ref != nil {
			l.Reference = *ref
		}
		l.DebitAmount = numericToDecimal(debit)
		l.CreditAmount = numericToDecimal(credit)
		l.RunningBalance = numericToDecimal(balance)
		s.Lines = append(s.Lines, l)
	}
	return &s, rows.Err()
}

// MarkLinesReconciled flags statement lines consumed by a matching pass.
func (r *StatementRepository) MarkLinesReconciled(ctx context.Context, tx usecase.Transaction, lineIDs []string) error {
	pgxTx := tx.(*Tx).PgxTx()
	_, err := pgxTx.Exec(ctx, `
		UPDATE bank_statement_lines SET reconciled = true
		WHERE id = ANY($1)`, lineIDs)
	return err
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/usecase"
)

// ReconciliationRepository implements usecase.ReconciliationRepository.
// Matches are recomputed on every pass and not persisted; sessions and
// their reconciling items are.
type ReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{pool: pool}
}

// Create inserts a reconciliation and its items inside the caller's transaction.
func (r *ReconciliationRepository) Create(ctx context.Context, tx usecase.Transaction, recon *domain.BankReconciliation) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO bank_reconciliations (
			id, tenant_id, bank_account_id, statement_id,
			opening_balance, closing_balance, book_balance, reconciled_balance, variance,
			status, created_at, created_by, updated_at, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		recon.ID,
		recon.TenantID,
		recon.BankAccountID,
		recon.StatementID,
		decimalToNumeric(recon.OpeningBalance),
		decimalToNumeric(recon.ClosingBalance),
		decimalToNumeric(recon.BookBalance),
		decimalToNumeric(recon.ReconciledBalance),
		decimalToNumeric(recon.Variance),
		string(recon.Status),
		timeToPgTimestamptz(recon.Audit.CreatedAt),
		recon.Audit.CreatedBy,
		timeToPgTimestamptz(recon.Audit.UpdatedAt),
		recon.Audit.UpdatedBy,
	)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range recon.Items {
		item := &recon.Items[i]
		batch.Queue(insertItemSQL,
			item.ID,
			item.ReconciliationID,
			string(item.Type),
			item.Description,
			textOrNull(item.Reference),
			timeToPgDate(item.Date),
			decimalToNumeric(item.Amount),
			item.Aged,
			timeToPgTimestamptz(item.CreatedAt),
		)
	}
	return pgxTx.SendBatch(ctx, batch).Close()
}

const insertItemSQL = `
	INSERT INTO reconciliation_items (
		id, reconciliation_id, type, description, reference, item_date, amount, aged, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// GetByID retrieves a reconciliation with its items.
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (*domain.BankReconciliation, error) {
	var rec domain.BankReconciliation
	var opening, closing, book, reconciled, variance pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, bank_account_id, statement_id,
		       opening_balance, closing_balance, book_balance, reconciled_balance, variance,
		       status, created_at, created_by, updated_at, updated_by
		FROM bank_reconciliations WHERE id = $1`, id).
		Scan(&rec.ID, &rec.TenantID, &rec.BankAccountID, &rec.StatementID,
			&opening, &closing, &book, &reconciled, &variance,
			&rec.Status, &rec.Audit.CreatedAt, &rec.Audit.CreatedBy, &rec.Audit.UpdatedAt, &rec.Audit.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReconciliationNotFound
		}
		return nil, err
	}
	rec.OpeningBalance = numericToDecimal(opening)
	rec.ClosingBalance = numericToDecimal(closing)
	rec.BookBalance = numericToDecimal(book)
	rec.ReconciledBalance = numericToDecimal(reconciled)
	rec.Variance = numericToDecimal(variance)

	rows, err := r.pool.Query(ctx, `
		SELECT id, reconciliation_id, type, description, reference, item_date, amount, aged, created_at
		FROM reconciliation_items
		WHERE reconciliation_id = $1
		ORDER BY item_date, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.ReconciliationItem
		var ref *string
		var amount pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.ReconciliationID, &item.Type, &item.Description,
			&ref, &item.Date, &amount, &item.Aged, &item.CreatedAt); err != nil {
			return nil, err
		}
		if ref != nil {
			item.Reference = *ref
		}
		item.Amount = numericToDecimal(amount)
		rec.Items = append(rec.Items, item)
	}
	return &rec, rows.Err()
}

// UpdateStatus persists a status/variance change on a session.
func (r *ReconciliationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReconciliationStatus, variance decimal.Decimal, updatedAt time.Time, updatedBy string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bank_reconciliations
		SET status = $2, variance = $3, reconciled_balance = closing_balance - $3, updated_at = $4, updated_by = $5
		WHERE id = $1`,
		id, string(status), decimalToNumeric(variance), timeToPgTimestamptz(updatedAt), updatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReconciliationNotFound
	}
	return nil
}

// CreateItem inserts a manual reconciling item.
func (r *ReconciliationRepository) CreateItem(ctx context.Context, item *domain.ReconciliationItem) error {
	_, err := r.pool.Exec(ctx, insertItemSQL,
		item.ID,
		item.ReconciliationID,
		string(item.Type),
		item.Description,
		textOrNull(item.Reference),
		timeToPgDate(item.Date),
		decimalToNumeric(item.Amount),
		item.Aged,
		timeToPgTimestamptz(item.CreatedAt),
	)
	return err
}

// ListRules retrieves a tenant's matching rules. Conditions are stored as
// a JSONB document per rule.
func (r *ReconciliationRepository) ListRules(ctx context.Context, tenantID string) ([]domain.MatchRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, priority, confidence, conditions, active
		FROM match_rules
		WHERE tenant_id = $1
		ORDER BY priority DESC, name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.MatchRule
	for rows.Next() {
		var rule domain.MatchRule
		var conditions []byte
		if err := rows.Scan(&rule.ID, &rule.TenantID, &rule.Name, &rule.Priority,
			&rule.Confidence, &conditions, &rule.Active); err != nil {
			return nil, err
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
				return nil, err
			}
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

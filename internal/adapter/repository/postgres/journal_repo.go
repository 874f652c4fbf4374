package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

const entryColumns = `id, tenant_id, reference, entry_date, period_id, status, source_module,
	description, reversal_of, reversed_by, created_at, created_by, updated_at, updated_by`

const lineColumns = `id, entry_id, account_id, account_code, direction, amount, currency,
	exchange_rate, base_amount, reference, created_at`

// CreateEntry inserts an entry and its lines inside the caller's transaction.
func (r *JournalRepository) CreateEntry(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		entry.ID,
		entry.TenantID,
		entry.Reference,
		timeToPgDate(entry.EntryDate),
		entry.PeriodID,
		string(entry.Status),
		entry.SourceModule,
		entry.Description,
		textOrNull(entry.ReversalOf),
		textOrNull(entry.ReversedBy),
		timeToPgTimestamptz(entry.Audit.CreatedAt),
		entry.Audit.CreatedBy,
		timeToPgTimestamptz(entry.Audit.UpdatedAt),
		entry.Audit.UpdatedBy,
	)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i := range entry.Lines {
		l := &entry.Lines[i]
		batch.Queue(`
			INSERT INTO journal_entry_lines (`+lineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			l.ID,
			l.EntryID,
			l.AccountID,
			l.AccountCode,
			string(l.Direction),
			decimalToNumeric(l.Amount),
			l.Currency,
			decimalToNumeric(l.ExchangeRate),
			decimalToNumeric(l.BaseAmount),
			textOrNull(l.Reference),
			timeToPgTimestamptz(l.CreatedAt),
		)
	}
	return pgxTx.SendBatch(ctx, batch).Close()
}

// GetEntry retrieves an entry with its lines.
func (r *JournalRepository) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+lineColumns+` FROM journal_entry_lines
		WHERE entry_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, rows.Err()
}

// ListByPeriod retrieves a period's entries, lines included, newest first.
func (r *JournalRepository) ListByPeriod(ctx context.Context, tenantID, periodID string, limit, offset int) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM journal_entries
		WHERE tenant_id = $1 AND period_id = $2
		ORDER BY reference DESC
		LIMIT $3 OFFSET $4`, tenantID, periodID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	byID := make(map[string]*domain.JournalEntry)
	ids := make([]string, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return entries, nil
	}

	lineRows, err := r.pool.Query(ctx, `
		SELECT `+lineColumns+` FROM journal_entry_lines
		WHERE entry_id = ANY($1) ORDER BY entry_id, id`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()

	for lineRows.Next() {
		line, err := scanLine(lineRows)
		if err != nil {
			return nil, err
		}
		if e, ok := byID[line.EntryID]; ok {
			e.Lines = append(e.Lines, line)
		}
	}
	return entries, lineRows.Err()
}

// MarkReversed flips a posted entry to Reversed, recording the reversal id.
func (r *JournalRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id, reversedBy string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	tag, err := pgxTx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, reversed_by = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(domain.EntryStatusReversed), reversedBy,
		timeToPgTimestamptz(updatedAt), string(domain.EntryStatusPosted))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// CountUnposted counts Draft and PendingApproval entries in a period
// within the caller's transaction.
func (r *JournalRepository) CountUnposted(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	var n int64
	err := pgxTx.QueryRow(ctx, `
		SELECT COUNT(*) FROM journal_entries
		WHERE period_id = $1 AND status IN ($2, $3)`,
		periodID, string(domain.EntryStatusDraft), string(domain.EntryStatusPendingApproval)).Scan(&n)
	return n, err
}

// PeriodTotals sums debit and credit base amounts over a period's entries
// within the caller's transaction.
func (r *JournalRepository) PeriodTotals(ctx context.Context, tx usecase.Transaction, periodID string) (int64, decimal.Decimal, decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()
	var count int64
	var debits, credits pgtype.Numeric
	err := pgxTx.QueryRow(ctx, `
		SELECT COUNT(DISTINCT e.id),
		       COALESCE(SUM(l.base_amount) FILTER (WHERE l.direction = 'DEBIT'), 0),
		       COALESCE(SUM(l.base_amount) FILTER (WHERE l.direction = 'CREDIT'), 0)
		FROM journal_entries e
		JOIN journal_entry_lines l ON l.entry_id = e.id
		WHERE e.period_id = $1 AND e.status IN ($2, $3)`,
		periodID, string(domain.EntryStatusPosted), string(domain.EntryStatusReversed)).
		Scan(&count, &debits, &credits)
	if err != nil {
		return 0, decimal.Zero, decimal.Zero, err
	}
	return count, numericToDecimal(debits), numericToDecimal(credits), nil
}

// MovementsByAccount aggregates debit/credit sums per account, split into
// before-range and in-range buckets, over posted history.
func (r *JournalRepository) MovementsByAccount(ctx context.Context, tenantID string, start, end time.Time) ([]usecase.AccountMovement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.account_id,
		       COALESCE(SUM(l.base_amount) FILTER (WHERE e.entry_date <  $2 AND l.direction = 'DEBIT'),  0),
		       COALESCE(SUM(l.base_amount) FILTER (WHERE e.entry_date <  $2 AND l.direction = 'CREDIT'), 0),
		       COALESCE(SUM(l.base_amount) FILTER (WHERE e.entry_date >= $2 AND l.direction = 'DEBIT'),  0),
		       COALESCE(SUM(l.base_amount) FILTER (WHERE e.entry_date >= $2 AND l.direction = 'CREDIT'), 0)
		FROM journal_entries e
		JOIN journal_entry_lines l ON l.entry_id = e.id
		WHERE e.tenant_id = $1
		  AND e.entry_date <= $3
		  AND e.status IN ($4, $5)
		GROUP BY l.account_id
		ORDER BY l.account_id`,
		tenantID, timeToPgDate(start), timeToPgDate(end),
		string(domain.EntryStatusPosted), string(domain.EntryStatusReversed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []usecase.AccountMovement
	for rows.Next() {
		var m usecase.AccountMovement
		var od, oc, pd, pc pgtype.Numeric
		if err := rows.Scan(&m.AccountID, &od, &oc, &pd, &pc); err != nil {
			return nil, err
		}
		m.OpeningDebits = numericToDecimal(od)
		m.OpeningCredits = numericToDecimal(oc)
		m.PeriodDebits = numericToDecimal(pd)
		m.PeriodCredits = numericToDecimal(pc)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// BookTransactions retrieves the posted lines against one account inside
// a date window, in the shape the reconciliation matcher consumes.
func (r *JournalRepository) BookTransactions(ctx context.Context, accountID string, start, end time.Time) ([]domain.BookTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.entry_id, l.account_id, e.entry_date, l.direction, l.amount,
		       COALESCE(l.reference, e.reference)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE l.account_id = $1
		  AND e.entry_date BETWEEN $2 AND $3
		  AND e.status IN ($4, $5)
		ORDER BY e.entry_date, l.id`,
		accountID, timeToPgDate(start), timeToPgDate(end),
		string(domain.EntryStatusPosted), string(domain.EntryStatusReversed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.BookTransaction
	for rows.Next() {
		var t domain.BookTransaction
		var amount pgtype.Numeric
		if err := rows.Scan(&t.ID, &t.EntryID, &t.AccountID, &t.Date, &t.Direction, &amount, &t.Reference); err != nil {
			return nil, err
		}
		t.Amount = numericToDecimal(amount)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// BookBalanceAsOf computes the account's signed book balance (debits minus
// credits) over all posted history up to asOf.
func (r *JournalRepository) BookBalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	var balance pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN l.direction = 'DEBIT' THEN l.amount ELSE -l.amount END), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE l.account_id = $1
		  AND e.entry_date <= $2
		  AND e.status IN ($3, $4)`,
		accountID, timeToPgDate(asOf),
		string(domain.EntryStatusPosted), string(domain.EntryStatusReversed)).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(balance), nil
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var reversalOf, reversedBy *string
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Reference, &e.EntryDate, &e.PeriodID, &e.Status,
		&e.SourceModule, &e.Description, &reversalOf, &reversedBy,
		&e.Audit.CreatedAt, &e.Audit.CreatedBy, &e.Audit.UpdatedAt, &e.Audit.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	if reversalOf != nil {
		e.ReversalOf = *reversalOf
	}
	if reversedBy != nil {
		e.ReversedBy = *reversedBy
	}
	return &e, nil
}

func scanLine(row pgx.Row) (domain.JournalEntryLine, error) {
	var l domain.JournalEntryLine
	var amount, rate, base pgtype.Numeric
	var ref *string
	err := row.Scan(
		&l.ID, &l.EntryID, &l.AccountID, &l.AccountCode, &l.Direction,
		&amount, &l.Currency, &rate, &base, &ref, &l.CreatedAt,
	)
	if err != nil {
		return l, err
	}
	l.Amount = numericToDecimal(amount)
	l.ExchangeRate = numericToDecimal(rate)
	l.BaseAmount = numericToDecimal(base)
	if ref != nil {
		l.Reference = *ref
	}
	return l, nil
}

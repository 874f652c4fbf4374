package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

const periodColumns = `id, tenant_id, code, start_date, end_date, fiscal_year, fiscal_month,
	status, next_sequence, created_at, created_by, updated_at, updated_by`

// Create inserts a new financial period.
func (r *PeriodRepository) Create(ctx context.Context, period *domain.FinancialPeriod) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO financial_periods (`+periodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		period.ID,
		period.TenantID,
		period.Code,
		timeToPgDate(period.StartDate),
		timeToPgDate(period.EndDate),
		period.FiscalYear,
		period.FiscalMonth,
		string(period.Status),
		period.NextSequence,
		timeToPgTimestamptz(period.Audit.CreatedAt),
		period.Audit.CreatedBy,
		timeToPgTimestamptz(period.Audit.UpdatedAt),
		period.Audit.UpdatedBy,
	)
	return err
}

// GetByID retrieves a period by ID.
func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*domain.FinancialPeriod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM financial_periods WHERE id = $1`, id)
	return scanPeriod(row)
}

// FindByDate finds the period whose window contains date.
func (r *PeriodRepository) FindByDate(ctx context.Context, tenantID string, date time.Time) (*domain.FinancialPeriod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM financial_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $2`,
		tenantID, timeToPgDate(date))
	return scanPeriod(row)
}

// FindByDateForUpdate locks the period row covering date for the
// transaction. The lock serializes sequence allocation per period.
func (r *PeriodRepository) FindByDateForUpdate(ctx context.Context, tx usecase.Transaction, tenantID string, date time.Time) (*domain.FinancialPeriod, error) {
	pgxTx := tx.(*Tx).PgxTx()
	row := pgxTx.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM financial_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $2
		FOR UPDATE`,
		tenantID, timeToPgDate(date))
	return scanPeriod(row)
}

// AllocateSequence increments the period's posting sequence and returns
// the allocated value. Callers hold the period row lock, so successive
// postings observe consecutive values with no gaps.
func (r *PeriodRepository) AllocateSequence(ctx context.Context, tx usecase.Transaction, periodID string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	var next int64
	err := pgxTx.QueryRow(ctx, `
		UPDATE financial_periods
		SET next_sequence = next_sequence + 1
		WHERE id = $1
		RETURNING next_sequence - 1`, periodID).Scan(&next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrPeriodNotFound
		}
		return 0, err
	}
	return next, nil
}

// GetByIDForUpdate locks the period row for the transaction. Lifecycle
// transitions take this lock so no entry can post between the close
// checks and the status flip.
func (r *PeriodRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.FinancialPeriod, error) {
	pgxTx := tx.(*Tx).PgxTx()
	row := pgxTx.QueryRow(ctx, `
		SELECT `+periodColumns+` FROM financial_periods
		WHERE id = $1
		FOR UPDATE`, id)
	return scanPeriod(row)
}

// UpdateStatus transitions a period's lifecycle status within the
// caller's transaction.
func (r *PeriodRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.PeriodStatus, updatedAt time.Time, updatedBy string) error {
	pgxTx := tx.(*Tx).PgxTx()
	tag, err := pgxTx.Exec(ctx, `
		UPDATE financial_periods SET status = $2, updated_at = $3, updated_by = $4
		WHERE id = $1`, id, string(status), timeToPgTimestamptz(updatedAt), updatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}
	return nil
}

// ListByFiscalYear retrieves a fiscal year's periods ordered by start date.
func (r *PeriodRepository) ListByFiscalYear(ctx context.Context, tenantID string, fiscalYear int) ([]*domain.FinancialPeriod, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+periodColumns+` FROM financial_periods
		WHERE tenant_id = $1 AND fiscal_year = $2
		ORDER BY start_date`, tenantID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*domain.FinancialPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func scanPeriod(row pgx.Row) (*domain.FinancialPeriod, error) {
	var p domain.FinancialPeriod
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Code, &p.StartDate, &p.EndDate, &p.FiscalYear, &p.FiscalMonth,
		&p.Status, &p.NextSequence,
		&p.Audit.CreatedAt, &p.Audit.CreatedBy, &p.Audit.UpdatedAt, &p.Audit.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, err
	}
	return &p, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/glcore/internal/domain"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, tenant_id, code, name, type, category, parent_code, level, path,
	is_summary, is_active, currency, created_at, created_by, updated_at, updated_by`

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		account.ID,
		account.TenantID,
		account.Code,
		account.Name,
		string(account.Type),
		account.Category,
		textOrNull(account.ParentCode),
		account.Level,
		account.Path,
		account.IsSummary,
		account.IsActive,
		account.Currency,
		timeToPgTimestamptz(account.Audit.CreatedAt),
		account.Audit.CreatedBy,
		timeToPgTimestamptz(account.Audit.UpdatedAt),
		account.Audit.UpdatedBy,
	)
	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByCode retrieves an account by tenant and code.
func (r *AccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND code = $2`, tenantID, code)
	return scanAccount(row)
}

// GetByCodes retrieves accounts by tenant and a set of codes.
func (r *AccountRepository) GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE tenant_id = $1 AND code = ANY($2)
		ORDER BY code`, tenantID, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// ListSubtree retrieves an account and its descendants by materialized path.
func (r *AccountRepository) ListSubtree(ctx context.Context, tenantID, path string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE tenant_id = $1 AND (path = $2 OR path LIKE $2 || '/%')
		ORDER BY path`, tenantID, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// List retrieves accounts with pagination, ordered by code.
func (r *AccountRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// Update rewrites the account's mutable columns.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET name = $2, type = $3, category = $4, updated_at = $5, updated_by = $6
		WHERE id = $1`,
		account.ID, account.Name, account.Type, account.Category,
		timeToPgTimestamptz(account.Audit.UpdatedAt), account.Audit.UpdatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SetActive flips the account's active flag.
func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time, updatedBy string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET is_active = $2, updated_at = $3, updated_by = $4
		WHERE id = $1`, id, active, timeToPgTimestamptz(updatedAt), updatedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// HasPostings reports whether any journal line ever hit the account.
func (r *AccountRepository) HasPostings(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id = $1)`, accountID).Scan(&exists)
	return exists, err
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var parentCode *string
	err := row.Scan(
		&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Type, &a.Category, &parentCode,
		&a.Level, &a.Path, &a.IsSummary, &a.IsActive, &a.Currency,
		&a.Audit.CreatedAt, &a.Audit.CreatedBy, &a.Audit.UpdatedAt, &a.Audit.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if parentCode != nil {
		a.ParentCode = *parentCode
	}
	return &a, nil
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

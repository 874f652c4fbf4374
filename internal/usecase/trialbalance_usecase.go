package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
)

// TrialBalanceLine is one account row of a trial balance report.
type TrialBalanceLine struct {
	AccountID   string
	AccountCode string
	AccountName string
	AccountType domain.AccountType
	// Opening and Closing are expressed in the account's natural sign:
	// positive when the balance sits on the account's normal side.
	Opening decimal.Decimal
	Debits  decimal.Decimal
	Credits decimal.Decimal
	Closing decimal.Decimal
}

// TrialBalance is a point-in-time aggregation over posted entries.
// It is derived entirely from the journal; nothing is stored.
type TrialBalance struct {
	StartDate        time.Time
	EndDate          time.Time
	Lines            []TrialBalanceLine
	TotalDebits      decimal.Decimal
	TotalCredits     decimal.Decimal
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
	TotalRevenue     decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetIncome        decimal.Decimal
	// EquationBalanced reports Assets == Liabilities + Equity + NetIncome
	// within epsilon.
	EquationBalanced bool
}

// TrialBalanceUseCase builds trial balance reports.
type TrialBalanceUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
	epsilon     decimal.Decimal
}

// NewTrialBalanceUseCase creates a new TrialBalanceUseCase.
func NewTrialBalanceUseCase(accountRepo AccountRepository, journalRepo JournalRepository) *TrialBalanceUseCase {
	return &TrialBalanceUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		epsilon:     domain.BalanceEpsilon,
	}
}

// TrialBalanceInput represents input for building a trial balance.
type TrialBalanceInput struct {
	StartDate           time.Time
	EndDate             time.Time
	IncludeZeroBalances bool
}

// Build computes the trial balance for the date range.
func (uc *TrialBalanceUseCase) Build(ctx context.Context, tenantID string, input TrialBalanceInput) (*TrialBalance, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", domain.ErrValidation)
	}

	accounts, err := uc.accountRepo.List(ctx, tenantID, MaxPageSize, 0)
	if err != nil {
		return nil, err
	}
	movements, err := uc.journalRepo.MovementsByAccount(ctx, tenantID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	tb := ComputeTrialBalance(accounts, movements, input, uc.epsilon)
	return &tb, nil
}

// ComputeTrialBalance folds per-account movements into a trial balance.
// It is deterministic: lines are ordered by account code.
func ComputeTrialBalance(accounts []*domain.Account, movements []AccountMovement, input TrialBalanceInput, epsilon decimal.Decimal) TrialBalance {
	byAccount := make(map[string]AccountMovement, len(movements))
	for _, m := range movements {
		byAccount[m.AccountID] = m
	}

	tb := TrialBalance{
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		TotalDebits:      decimal.Zero,
		TotalCredits:     decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		TotalRevenue:     decimal.Zero,
		TotalExpenses:    decimal.Zero,
	}

	for _, account := range accounts {
		if account.IsSummary {
			continue
		}
		m := byAccount[account.ID]

		sign := decimal.NewFromInt(1)
		if account.NormalBalance() == domain.NormalBalanceCredit {
			sign = decimal.NewFromInt(-1)
		}

		opening := m.OpeningDebits.Sub(m.OpeningCredits).Mul(sign)
		movement := m.PeriodDebits.Sub(m.PeriodCredits).Mul(sign)
		closing := opening.Add(movement)

		if !input.IncludeZeroBalances && opening.IsZero() && m.PeriodDebits.IsZero() && m.PeriodCredits.IsZero() {
			continue
		}

		tb.Lines = append(tb.Lines, TrialBalanceLine{
			AccountID:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
			AccountType: account.Type,
			Opening:     opening,
			Debits:      m.PeriodDebits,
			Credits:     m.PeriodCredits,
			Closing:     closing,
		})

		tb.TotalDebits = tb.TotalDebits.Add(m.PeriodDebits)
		tb.TotalCredits = tb.TotalCredits.Add(m.PeriodCredits)

		switch account.Type {
		case domain.AccountTypeAsset:
			tb.TotalAssets = tb.TotalAssets.Add(closing)
		case domain.AccountTypeLiability:
			tb.TotalLiabilities = tb.TotalLiabilities.Add(closing)
		case domain.AccountTypeEquity:
			tb.TotalEquity = tb.TotalEquity.Add(closing)
		case domain.AccountTypeRevenue:
			tb.TotalRevenue = tb.TotalRevenue.Add(closing)
		case domain.AccountTypeExpense:
			tb.TotalExpenses = tb.TotalExpenses.Add(closing)
		}
	}

	sort.Slice(tb.Lines, func(i, j int) bool {
		return tb.Lines[i].AccountCode < tb.Lines[j].AccountCode
	})

	tb.NetIncome = tb.TotalRevenue.Sub(tb.TotalExpenses)
	diff := tb.TotalAssets.Sub(tb.TotalLiabilities.Add(tb.TotalEquity).Add(tb.NetIncome))
	tb.EquationBalanced = diff.Abs().LessThanOrEqual(epsilon)
	return tb
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/ingest"
	"github.com/finkit/glcore/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Category   string    `json:"category,omitempty"`
	ParentCode string    `json:"parent_code,omitempty"`
	Level      int       `json:"level"`
	Path       string    `json:"path"`
	IsSummary  bool      `json:"is_summary"`
	IsActive   bool      `json:"is_active"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       string(a.Type),
		Category:   a.Category,
		ParentCode: a.ParentCode,
		Level:      a.Level,
		Path:       a.Path,
		IsSummary:  a.IsSummary,
		IsActive:   a.IsActive,
		Currency:   a.Currency,
		CreatedAt:  a.Audit.CreatedAt,
		UpdatedAt:  a.Audit.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// EntryLineResponse represents a journal entry line in API responses.
type EntryLineResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	AccountCode  string          `json:"account_code"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	Reference    string          `json:"reference,omitempty"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID           string              `json:"id"`
	Reference    string              `json:"reference"`
	EntryDate    time.Time           `json:"entry_date"`
	PeriodID     string              `json:"period_id"`
	Status       string              `json:"status"`
	SourceModule string              `json:"source_module,omitempty"`
	Description  string              `json:"description,omitempty"`
	ReversalOf   string              `json:"reversal_of,omitempty"`
	ReversedBy   string              `json:"reversed_by,omitempty"`
	Lines        []EntryLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
}

// EntryFromDomain converts domain journal entry to response.
func EntryFromDomain(e *domain.JournalEntry) *EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			ID:           l.ID,
			AccountID:    l.AccountID,
			AccountCode:  l.AccountCode,
			Direction:    string(l.Direction),
			Amount:       l.Amount,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
			BaseAmount:   l.BaseAmount,
			Reference:    l.Reference,
		}
	}
	return &EntryResponse{
		ID:           e.ID,
		Reference:    e.Reference,
		EntryDate:    e.EntryDate,
		PeriodID:     e.PeriodID,
		Status:       string(e.Status),
		SourceModule: e.SourceModule,
		Description:  e.Description,
		ReversalOf:   e.ReversalOf,
		ReversedBy:   e.ReversedBy,
		Lines:        lines,
		CreatedAt:    e.Audit.CreatedAt,
	}
}

// EntriesFromDomain converts domain journal entries to responses.
func EntriesFromDomain(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Total   int64            `json:"total"`
}

// PeriodResponse represents a financial period in API responses.
type PeriodResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	FiscalYear  int       `json:"fiscal_year"`
	FiscalMonth int       `json:"fiscal_month"`
	Status      string    `json:"status"`
}

// PeriodFromDomain converts domain period to response.
func PeriodFromDomain(p *domain.FinancialPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:          p.ID,
		Code:        p.Code,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		FiscalYear:  p.FiscalYear,
		FiscalMonth: p.FiscalMonth,
		Status:      string(p.Status),
	}
}

// PeriodsFromDomain converts domain periods to responses.
func PeriodsFromDomain(periods []*domain.FinancialPeriod) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// ClosingSummaryResponse reports the outcome of a period close.
type ClosingSummaryResponse struct {
	PeriodID     string    `json:"period_id"`
	PeriodCode   string    `json:"period_code"`
	EntryCount   int64     `json:"entry_count"`
	TotalDebits  string    `json:"total_debits"`
	TotalCredits string    `json:"total_credits"`
	Balanced     bool      `json:"balanced"`
	ClosedAt     time.Time `json:"closed_at"`
}

// ClosingSummaryFromDomain converts a closing summary to response.
func ClosingSummaryFromDomain(s *domain.ClosingSummary) *ClosingSummaryResponse {
	return &ClosingSummaryResponse{
		PeriodID:     s.PeriodID,
		PeriodCode:   s.PeriodCode,
		EntryCount:   s.EntryCount,
		TotalDebits:  s.TotalDebits,
		TotalCredits: s.TotalCredits,
		Balanced:     s.Balanced,
		ClosedAt:     s.ClosedAt,
	}
}

// TrialBalanceLineResponse is one account row of a trial balance report.
type TrialBalanceLineResponse struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Opening     decimal.Decimal `json:"opening"`
	Debits      decimal.Decimal `json:"debits"`
	Credits     decimal.Decimal `json:"credits"`
	Closing     decimal.Decimal `json:"closing"`
}

// TrialBalanceResponse represents a trial balance report.
type TrialBalanceResponse struct {
	StartDate        time.Time                  `json:"start_date"`
	EndDate          time.Time                  `json:"end_date"`
	Lines            []TrialBalanceLineResponse `json:"lines"`
	TotalDebits      decimal.Decimal            `json:"total_debits"`
	TotalCredits     decimal.Decimal            `json:"total_credits"`
	TotalAssets      decimal.Decimal            `json:"total_assets"`
	TotalLiabilities decimal.Decimal            `json:"total_liabilities"`
	TotalEquity      decimal.Decimal            `json:"total_equity"`
	TotalRevenue     decimal.Decimal            `json:"total_revenue"`
	TotalExpenses    decimal.Decimal            `json:"total_expenses"`
	NetIncome        decimal.Decimal            `json:"net_income"`
	EquationBalanced bool                       `json:"equation_balanced"`
}

// TrialBalanceFromUseCase converts a computed trial balance to response.
func TrialBalanceFromUseCase(tb *usecase.TrialBalance) *TrialBalanceResponse {
	lines := make([]TrialBalanceLineResponse, len(tb.Lines))
	for i, l := range tb.Lines {
		lines[i] = TrialBalanceLineResponse{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			AccountName: l.AccountName,
			AccountType: string(l.AccountType),
			Opening:     l.Opening,
			Debits:      l.Debits,
			Credits:     l.Credits,
			Closing:     l.Closing,
		}
	}
	return &TrialBalanceResponse{
		StartDate:        tb.StartDate,
		EndDate:          tb.EndDate,
		Lines:            lines,
		TotalDebits:      tb.TotalDebits,
		TotalCredits:     tb.TotalCredits,
		TotalAssets:      tb.TotalAssets,
		TotalLiabilities: tb.TotalLiabilities,
		TotalEquity:      tb.TotalEquity,
		TotalRevenue:     tb.TotalRevenue,
		TotalExpenses:    tb.TotalExpenses,
		NetIncome:        tb.NetIncome,
		EquationBalanced: tb.EquationBalanced,
	}
}

// StatementLineResponse represents one statement line in API responses.
type StatementLineResponse struct {
	ID              string          `json:"id"`
	LineNo          int             `json:"line_no"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	RunningBalance  decimal.Decimal `json:"running_balance"`
	Reconciled      bool            `json:"reconciled"`
}

// StatementResponse represents a bank statement in API responses.
type StatementResponse struct {
	ID             string                  `json:"id"`
	BankAccountID  string                  `json:"bank_account_id"`
	StartDate      time.Time               `json:"start_date"`
	EndDate        time.Time               `json:"end_date"`
	OpeningBalance decimal.Decimal         `json:"opening_balance"`
	ClosingBalance decimal.Decimal         `json:"closing_balance"`
	Lines          []StatementLineResponse `json:"lines"`
}

// StatementFromDomain converts domain statement to response.
func StatementFromDomain(s *domain.BankStatement) *StatementResponse {
	lines := make([]StatementLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = StatementLineResponse{
			ID:              l.ID,
			LineNo:          l.LineNo,
			TransactionDate: l.TransactionDate,
			Description:     l.Description,
			Reference:       l.Reference,
			DebitAmount:     l.DebitAmount,
			CreditAmount:    l.CreditAmount,
			RunningBalance:  l.RunningBalance,
			Reconciled:      l.Reconciled,
		}
	}
	return &StatementResponse{
		ID:             s.ID,
		BankAccountID:  s.BankAccountID,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		Lines:          lines,
	}
}

// ImportStatementResponse reports an import with per-row diagnostics.
type ImportStatementResponse struct {
	Statement   *StatementResponse     `json:"statement"`
	SkippedRows int                    `json:"skipped_rows"`
	Diagnostics []ingest.RowDiagnostic `json:"diagnostics,omitempty"`
}

// ItemResponse represents a reconciling item in API responses.
type ItemResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Aged        bool            `json:"aged"`
}

// MatchResponse represents one matching decision in API responses.
type MatchResponse struct {
	StatementLineID   string `json:"statement_line_id"`
	BookTransactionID string `json:"book_transaction_id,omitempty"`
	Type              string `json:"type"`
	Confidence        int    `json:"confidence"`
	DateDeltaDays     int    `json:"date_delta_days"`
	RuleID            string `json:"rule_id,omitempty"`
}

// ReconciliationResponse represents a reconciliation session.
type ReconciliationResponse struct {
	ID                string          `json:"id"`
	BankAccountID     string          `json:"bank_account_id"`
	StatementID       string          `json:"statement_id"`
	OpeningBalance    decimal.Decimal `json:"opening_balance"`
	ClosingBalance    decimal.Decimal `json:"closing_balance"`
	BookBalance       decimal.Decimal `json:"book_balance"`
	ReconciledBalance decimal.Decimal `json:"reconciled_balance"`
	Variance          decimal.Decimal `json:"variance"`
	Status            string          `json:"status"`
	Items             []ItemResponse  `json:"items"`
	Matches           []MatchResponse `json:"matches,omitempty"`
}

// ReconciliationFromDomain converts domain reconciliation to response.
func ReconciliationFromDomain(r *domain.BankReconciliation) *ReconciliationResponse {
	items := make([]ItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ItemResponse{
			ID:          it.ID,
			Type:        string(it.Type),
			Description: it.Description,
			Reference:   it.Reference,
			Date:        it.Date,
			Amount:      it.Amount,
			Aged:        it.Aged,
		}
	}
	matches := make([]MatchResponse, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = MatchResponse{
			StatementLineID:   m.StatementLineID,
			BookTransactionID: m.BookTransactionID,
			Type:              string(m.Type),
			Confidence:        m.Confidence,
			DateDeltaDays:     m.DateDeltaDays,
			RuleID:            m.RuleID,
		}
	}
	return &ReconciliationResponse{
		ID:                r.ID,
		BankAccountID:     r.BankAccountID,
		StatementID:       r.StatementID,
		OpeningBalance:    r.OpeningBalance,
		ClosingBalance:    r.ClosingBalance,
		BookBalance:       r.BookBalance,
		ReconciledBalance: r.ReconciledBalance,
		Variance:          r.Variance,
		Status:            string(r.Status),
		Items:             items,
		Matches:           matches,
	}
}

// RunMatchingResponse reports one completed matching pass.
type RunMatchingResponse struct {
	Reconciliation *ReconciliationResponse `json:"reconciliation"`
	MatchedLines   int                     `json:"matched_lines"`
	UnmatchedLines int                     `json:"unmatched_lines"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/ingest"
	"github.com/finkit/glcore/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Category   string `json:"category,omitempty"`
	ParentCode string `json:"parent_code,omitempty"`
	IsSummary  bool   `json:"is_summary,omitempty"`
	Currency   string `json:"currency"`
}

// UpdateAccountRequest represents a request to update an account. Omitted
// fields are left unchanged.
type UpdateAccountRequest struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput() usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		Name:     r.Name,
		Type:     domain.AccountType(r.Type),
		Category: r.Category,
	}
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Code:       r.Code,
		Name:       r.Name,
		Type:       domain.AccountType(r.Type),
		Category:   r.Category,
		ParentCode: r.ParentCode,
		IsSummary:  r.IsSummary,
		Currency:   r.Currency,
	}
}

// EntryLineRequest is a single debit or credit line of a posting request.
type EntryLineRequest struct {
	AccountCode  string          `json:"account_code"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency,omitempty"`
	ExchangeRate decimal.Decimal `json:"exchange_rate,omitempty"`
	Reference    string          `json:"reference,omitempty"`
}

// PostEntryRequest represents a request to post a journal entry.
type PostEntryRequest struct {
	EntryDate    time.Time          `json:"entry_date"`
	SourceModule string             `json:"source_module,omitempty"`
	Description  string             `json:"description"`
	Lines        []EntryLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *PostEntryRequest) ToUseCaseInput() usecase.PostEntryInput {
	lines := make([]usecase.PostEntryLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.PostEntryLineInput{
			AccountCode:  l.AccountCode,
			Direction:    domain.Direction(l.Direction),
			Amount:       l.Amount,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
			Reference:    l.Reference,
		}
	}
	return usecase.PostEntryInput{
		EntryDate:    r.EntryDate,
		SourceModule: r.SourceModule,
		Description:  r.Description,
		Lines:        lines,
	}
}

// ReverseEntryRequest represents a request to reverse a posted entry.
type ReverseEntryRequest struct {
	Description string `json:"description,omitempty"`
}

// CreatePeriodRequest represents a request to create a financial period.
type CreatePeriodRequest struct {
	Code        string    `json:"code"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	FiscalYear  int       `json:"fiscal_year"`
	FiscalMonth int       `json:"fiscal_month"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePeriodRequest) ToUseCaseInput() usecase.CreatePeriodInput {
	return usecase.CreatePeriodInput{
		Code:        r.Code,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		FiscalYear:  r.FiscalYear,
		FiscalMonth: r.FiscalMonth,
	}
}

// ReopenPeriodRequest represents a request to reopen a closed period.
type ReopenPeriodRequest struct {
	Reason string `json:"reason"`
}

// ImportStatementRequest represents a request to import a bank statement.
type ImportStatementRequest struct {
	BankAccountID string `json:"bank_account_id"`
	Format        string `json:"format,omitempty"`
	Content       string `json:"content"`
}

// ToUseCaseInput converts to use case input.
func (r *ImportStatementRequest) ToUseCaseInput() usecase.ImportStatementInput {
	format := ingest.Format(r.Format)
	if format == "" {
		format = ingest.FormatCSV
	}
	return usecase.ImportStatementInput{
		BankAccountID: r.BankAccountID,
		Format:        format,
		Raw:           r.Content,
	}
}

// AddItemRequest represents a request to add a manual reconciling item.
type AddItemRequest struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *AddItemRequest) ToUseCaseInput() usecase.AddItemInput {
	return usecase.AddItemInput{
		Type:        domain.ItemType(r.Type),
		Description: r.Description,
		Reference:   r.Reference,
		Date:        r.Date,
		Amount:      r.Amount,
	}
}

package domain

import (
	"strings"
	"time"
)

// AccountType classifies a chart-of-accounts node.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account type naturally increases.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// Account is a node in the chart of accounts tree.
type Account struct {
	ID         string
	TenantID   string
	Code       string
	Name       string
	Type       AccountType
	Category   string
	ParentCode string // empty for root accounts
	Level      int    // depth in the tree, root = 0
	Path       string // materialized path of codes, e.g. "1000/1100/1110"
	IsSummary  bool   // summary accounts roll up children and reject direct postings
	IsActive   bool
	Currency   string
	Audit      AuditFields
}

// NormalBalance returns the side on which the account increases.
func (a *Account) NormalBalance() NormalBalance {
	switch a.Type {
	case AccountTypeAsset, AccountTypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// CanReceivePostings reports whether direct journal lines may target the account.
func (a *Account) CanReceivePostings() bool {
	return a.IsActive && !a.IsSummary
}

// IsDescendantOf reports whether the account lives under the subtree rooted at code.
func (a *Account) IsDescendantOf(code string) bool {
	if a.Code == code {
		return false
	}
	return strings.HasPrefix(a.Path, code+"/") || strings.Contains(a.Path, "/"+code+"/")
}

// ValidAccountType reports whether t is one of the five account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// ChildPath builds the materialized path for a child created under parent.
func ChildPath(parent *Account, code string) string {
	if parent == nil {
		return code
	}
	return parent.Path + "/" + code
}

// AuditFields carries tenant-scoped creation/modification attribution.
type AuditFields struct {
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
}
